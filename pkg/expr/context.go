// Package expr builds a deduplicated symbolic math graph: the small DAG of
// Var/Const/Unary/Binary/BinaryChoice nodes that a Context scheduler later
// flattens into a Scheduled tape for pkg/tape to compile.
package expr

// NodeID names a node, globally unique within one Context.
type NodeID int

// Op is the closed set of node kinds a Context can hold.
type Op int

const (
	OpVar Op = iota
	OpConst
	OpUnary
	OpBinary
	OpBinaryChoice
)

// UnaryOp enumerates the unary math operators a Node can carry.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryAbs
	UnaryRecip
	UnarySqrt
	UnarySquare
)

// BinaryOp enumerates the binary math operators a Node can carry, both
// plain (Add/Sub/Mul) and choice-bearing (Min/Max).
type BinaryOp int

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryMin
	BinaryMax
)

// IsChoice reports whether b is a min/max operator requiring a Choice slot.
func (b BinaryOp) IsChoice() bool {
	return b == BinaryMin || b == BinaryMax
}

// Node is one entry in a Context's graph. Only the fields relevant to Op are
// meaningful; the rest are zero.
type Node struct {
	Op     Op
	Var    string
	Const  float64
	Unary  UnaryOp
	Binary BinaryOp
	A, B   NodeID // operands; A only for OpUnary, unused for OpVar/OpConst
}

// Context is a hash-consed builder for a symbolic math DAG: structurally
// identical nodes (same Op and operands) are assigned the same NodeID, so
// shared sub-expressions are represented once, matching the "DAG, not a
// tree" design note every consumer of this graph relies on.
type Context struct {
	nodes []Node
	dedup map[Node]NodeID
}

// NewContext returns an empty graph builder.
func NewContext() *Context {
	return &Context{dedup: make(map[Node]NodeID)}
}

// Node returns the Node stored at id. It panics if id is out of range,
// since an out-of-range NodeID can only come from a bug in the caller.
func (c *Context) Node(id NodeID) Node {
	return c.nodes[id]
}

// Len returns the number of distinct nodes recorded so far.
func (c *Context) Len() int {
	return len(c.nodes)
}

func (c *Context) intern(n Node) NodeID {
	if id, ok := c.dedup[n]; ok {
		return id
	}
	id := NodeID(len(c.nodes))
	c.nodes = append(c.nodes, n)
	c.dedup[n] = id
	return id
}

// X, Y, Z return (deduplicated) handles to the three input axes.
func (c *Context) X() NodeID { return c.intern(Node{Op: OpVar, Var: "X"}) }
func (c *Context) Y() NodeID { return c.intern(Node{Op: OpVar, Var: "Y"}) }
func (c *Context) Z() NodeID { return c.intern(Node{Op: OpVar, Var: "Z"}) }

// Var returns a handle to a named variable. Only "X", "Y", "Z" resolve to an
// axis downstream; the node survives interning with any name, but
// schedule.AxisFor panics with a fatal encoding error the moment the
// scheduler reaches any other name.
func (c *Context) Var(name string) NodeID {
	return c.intern(Node{Op: OpVar, Var: name})
}

// Const returns a handle to a constant value.
func (c *Context) Const(v float64) NodeID {
	return c.intern(Node{Op: OpConst, Const: v})
}

func (c *Context) unary(op UnaryOp, a NodeID) NodeID {
	return c.intern(Node{Op: OpUnary, Unary: op, A: a})
}

func (c *Context) binary(op BinaryOp, a, b NodeID) NodeID {
	kind := OpBinary
	if op.IsChoice() {
		kind = OpBinaryChoice
	}
	return c.intern(Node{Op: kind, Binary: op, A: a, B: b})
}

func (c *Context) Neg(a NodeID) NodeID    { return c.unary(UnaryNeg, a) }
func (c *Context) Abs(a NodeID) NodeID    { return c.unary(UnaryAbs, a) }
func (c *Context) Recip(a NodeID) NodeID  { return c.unary(UnaryRecip, a) }
func (c *Context) Sqrt(a NodeID) NodeID   { return c.unary(UnarySqrt, a) }
func (c *Context) Square(a NodeID) NodeID { return c.unary(UnarySquare, a) }

func (c *Context) Add(a, b NodeID) NodeID { return c.binary(BinaryAdd, a, b) }
func (c *Context) Sub(a, b NodeID) NodeID { return c.binary(BinarySub, a, b) }
func (c *Context) Mul(a, b NodeID) NodeID { return c.binary(BinaryMul, a, b) }
func (c *Context) Min(a, b NodeID) NodeID { return c.binary(BinaryMin, a, b) }
func (c *Context) Max(a, b NodeID) NodeID { return c.binary(BinaryMax, a, b) }
