package runinfo

import "testing"

func TestFromEnvGitHubActions(t *testing.T) {
	clearKnownEnv(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_REPOSITORY", "bench/jqgen")
	t.Setenv("GITHUB_HEAD_REF", "feature/where-clause")
	t.Setenv("GITHUB_SHA", "deadbeef")
	t.Setenv("GITHUB_JOB", "generate")
	t.Setenv("GITHUB_RUN_ID", "123456")

	info := FromEnv()
	if info == nil {
		t.Fatalf("expected run info")
	}
	if !info.CI {
		t.Fatalf("expected ci=true")
	}
	if info.Provider != "github_actions" {
		t.Fatalf("provider=%q", info.Provider)
	}
	if info.Branch != "feature/where-clause" {
		t.Fatalf("branch=%q", info.Branch)
	}
	if info.BuildURL != "https://github.com/bench/jqgen/actions/runs/123456" {
		t.Fatalf("build_url=%q", info.BuildURL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearKnownEnv(t)
	t.Setenv("GIT_BRANCH", "origin/main")
	t.Setenv("JQGEN_CI_PROVIDER", "Manual")
	t.Setenv("JQGEN_CI_COMMIT", "abc123")
	t.Setenv("JQGEN_CI_RUN_ID", "run-77")

	info := FromEnv()
	if info == nil {
		t.Fatalf("expected run info")
	}
	if !info.CI {
		t.Fatalf("expected ci=true when overrides are set")
	}
	if info.Provider != "manual" {
		t.Fatalf("provider=%q", info.Provider)
	}
	if info.Branch != "main" {
		t.Fatalf("branch=%q", info.Branch)
	}
	if info.Commit != "abc123" || info.RunID != "run-77" {
		t.Fatalf("commit=%q run_id=%q", info.Commit, info.RunID)
	}
}

func TestFromEnvExplicitlyNotCI(t *testing.T) {
	clearKnownEnv(t)
	t.Setenv("JQGEN_CI", "false")
	t.Setenv("JQGEN_CI_COMMIT", "abc123")

	info := FromEnv()
	if info == nil || info.CI {
		t.Fatalf("expected ci=false, got %+v", info)
	}
	if info.Provider != "" {
		t.Fatalf("provider=%q", info.Provider)
	}
}

func TestFromEnvEmpty(t *testing.T) {
	clearKnownEnv(t)
	if info := FromEnv(); info != nil {
		t.Fatalf("expected nil run info, got %+v", *info)
	}
}

func clearKnownEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "JENKINS_URL", "GITHUB_SERVER_URL",
		"JQGEN_CI",
	}
	for _, f := range fields {
		keys = append(keys, f.keys...)
		keys = append(keys, overridePrefix+f.suffix)
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
