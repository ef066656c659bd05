package generator

const (
	placeholderOpen  = "{{"
	placeholderClose = "}}"
	// placeholderPrefix names template placeholders p0, p1, ...
	placeholderPrefix = "p"
)

// functionClass is a random projection class competing for the shared budget.
type functionClass string

const (
	classUnary     functionClass = "UNARY"
	classBinary    functionClass = "BINARY"
	classAggregate functionClass = "AGGREGATE"
)

var functionClasses = []functionClass{classUnary, classBinary, classAggregate}

// filterOperators maps schema description operators to SQL.
var filterOperators = map[string]string{
	"eq": "=",
}
