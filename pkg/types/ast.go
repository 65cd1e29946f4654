package types

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types, named after the JEXL reference implementation.
const (
	NodeLiteral     NodeType = "Literal"
	NodeIdentifier  NodeType = "Identifier"
	NodeUnary       NodeType = "UnaryExpression"
	NodeBinary      NodeType = "BinaryExpression"
	NodeConditional NodeType = "ConditionalExpression"
	NodeArray       NodeType = "ArrayLiteral"
	NodeObject      NodeType = "ObjectLiteral"
	NodeFilter      NodeType = "FilterExpression"
	NodeFunction    NodeType = "FunctionCall"
)

// Node is a node of a JEXL Abstract Syntax Tree.
//
// The set of implementations is closed: only the node types declared in this
// package satisfy Node. Trees are treated as immutable once built.
type Node interface {
	// Kind returns the node type.
	Kind() NodeType

	node()
}

// Pool selects where a FunctionCall looks up its function.
type Pool string

const (
	// PoolFunctions is used for ordinary calls: name(args).
	PoolFunctions Pool = "functions"
	// PoolTransforms is used for pipe calls: subject | name(args).
	// The subject is the first argument.
	PoolTransforms Pool = "transforms"
)

// Literal is a string, number or boolean constant.
type Literal struct {
	Value any
}

// Identifier is a property name, either standing alone or continuing the
// expression in From.
type Identifier struct {
	Value string
	From  Node
}

// UnaryExpression applies a prefix operator to Right.
type UnaryExpression struct {
	Operator string
	Right    Node
}

// BinaryExpression applies an infix operator to Left and Right.
type BinaryExpression struct {
	Operator string
	Left     Node
	Right    Node
}

// ConditionalExpression is the ternary test ? consequent : alternate.
type ConditionalExpression struct {
	Test       Node
	Consequent Node
	Alternate  Node
}

// ArrayLiteral is an array constructor [a, b, c].
type ArrayLiteral struct {
	Value []Node
}

// ObjectEntry is a single key: value pair of an ObjectLiteral.
type ObjectEntry struct {
	Key   string
	Value Node
}

// ObjectLiteral is an object constructor { a: 1, b: 2 }.
// Entries keep their source order.
type ObjectLiteral struct {
	Value []ObjectEntry
}

// FilterExpression is a subscript subject[expr]. When Relative is set the
// inner expression is scoped to each element of the subject: subject[.expr].
type FilterExpression struct {
	Subject  Node
	Expr     Node
	Relative bool
}

// FunctionCall is either a function call or a transform, depending on Pool.
type FunctionCall struct {
	Pool Pool
	Name string
	Args []Node
}

func (*Literal) Kind() NodeType               { return NodeLiteral }
func (*Identifier) Kind() NodeType            { return NodeIdentifier }
func (*UnaryExpression) Kind() NodeType       { return NodeUnary }
func (*BinaryExpression) Kind() NodeType      { return NodeBinary }
func (*ConditionalExpression) Kind() NodeType { return NodeConditional }
func (*ArrayLiteral) Kind() NodeType          { return NodeArray }
func (*ObjectLiteral) Kind() NodeType         { return NodeObject }
func (*FilterExpression) Kind() NodeType      { return NodeFilter }
func (*FunctionCall) Kind() NodeType          { return NodeFunction }

func (*Literal) node()               {}
func (*Identifier) node()            {}
func (*UnaryExpression) node()       {}
func (*BinaryExpression) node()      {}
func (*ConditionalExpression) node() {}
func (*ArrayLiteral) node()          {}
func (*ObjectLiteral) node()         {}
func (*FilterExpression) node()      {}
func (*FunctionCall) node()          {}

// String returns a string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}
