// Package runinfo records where a generation run happened, for summary.json.
package runinfo

import (
	"os"
	"strings"
)

// BasicInfo captures CI metadata of a run.
type BasicInfo struct {
	CI         bool   `json:"ci,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Repository string `json:"repository,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Commit     string `json:"commit,omitempty"`
	Job        string `json:"job,omitempty"`
	RunID      string `json:"run_id,omitempty"`
	BuildURL   string `json:"build_url,omitempty"`
}

const overridePrefix = "JQGEN_CI_"

// field binds a BasicInfo string to the variables it is read from, most specific
// first. The JQGEN_CI_<suffix> variable always wins.
type field struct {
	suffix string
	dst    func(*BasicInfo) *string
	keys   []string
}

var fields = []field{
	{"PROVIDER", func(b *BasicInfo) *string { return &b.Provider }, []string{"CI_PROVIDER"}},
	{"REPOSITORY", func(b *BasicInfo) *string { return &b.Repository }, []string{"GITHUB_REPOSITORY", "CI_PROJECT_PATH", "BUILD_REPOSITORY_NAME"}},
	{"BRANCH", func(b *BasicInfo) *string { return &b.Branch }, []string{"GITHUB_HEAD_REF", "GITHUB_REF_NAME", "CI_COMMIT_REF_NAME", "BRANCH_NAME", "GIT_BRANCH"}},
	{"COMMIT", func(b *BasicInfo) *string { return &b.Commit }, []string{"GITHUB_SHA", "CI_COMMIT_SHA", "GIT_COMMIT"}},
	{"JOB", func(b *BasicInfo) *string { return &b.Job }, []string{"GITHUB_JOB", "CI_JOB_NAME", "JOB_NAME"}},
	{"RUN_ID", func(b *BasicInfo) *string { return &b.RunID }, []string{"GITHUB_RUN_ID", "CI_PIPELINE_ID", "BUILD_ID"}},
	{"BUILD_URL", func(b *BasicInfo) *string { return &b.BuildURL }, []string{"CI_JOB_URL", "BUILD_URL"}},
}

// FromEnv builds run metadata from environment variables. It returns nil outside CI
// when no override is set.
func FromEnv() *BasicInfo {
	info := BasicInfo{Provider: detectProvider()}
	info.CI = info.Provider != "" || isTruthy(env("CI"))
	overridden := false
	for _, f := range fields {
		dst := f.dst(&info)
		if v := env(overridePrefix + f.suffix); v != "" {
			*dst = v
			overridden = true
			continue
		}
		if *dst == "" {
			*dst = envFirst(f.keys...)
		}
	}
	info.Provider = strings.ToLower(info.Provider)
	info.Branch = strings.TrimPrefix(strings.TrimPrefix(info.Branch, "refs/heads/"), "origin/")
	if info.BuildURL == "" && info.Provider == "github_actions" && info.Repository != "" && info.RunID != "" {
		server := env("GITHUB_SERVER_URL")
		if server == "" {
			server = "https://github.com"
		}
		info.BuildURL = strings.TrimRight(server, "/") + "/" + info.Repository + "/actions/runs/" + info.RunID
	}

	if v, ok := os.LookupEnv(overridePrefix[:len(overridePrefix)-1]); ok && strings.TrimSpace(v) != "" {
		info.CI = isTruthy(v)
	} else if overridden {
		info.CI = true
	}
	if info.CI && info.Provider == "" {
		info.Provider = "generic"
	}
	if info == (BasicInfo{}) {
		return nil
	}
	return &info
}

func detectProvider() string {
	switch {
	case isTruthy(env("GITHUB_ACTIONS")):
		return "github_actions"
	case isTruthy(env("GITLAB_CI")):
		return "gitlab_ci"
	case isTruthy(env("BUILDKITE")):
		return "buildkite"
	case env("JENKINS_URL") != "":
		return "jenkins"
	}
	return ""
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if value := env(key); value != "" {
			return value
		}
	}
	return ""
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
