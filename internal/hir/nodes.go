package hir

import (
	"github.com/aurora-lang/aurora/internal/position"
)

// Effect is an inferred guarantee about a function.
type Effect string

const (
	// EffectPure marks a function whose body is side-effect free.
	EffectPure Effect = "constexpr"
	// EffectNoThrow is attached to every lowered function.
	EffectNoThrow Effect = "noexcept"
)

// Expr is a typed expression. GetType never returns nil.
type Expr interface {
	GetType() Type
	GetSpan() position.Span
	hirExpr()
}

// Stmt is a typed statement.
type Stmt interface {
	GetSpan() position.Span
	hirStmt()
}

// Item is a top-level declaration of a Module: *TypeDecl or *Func.
type Item interface {
	ItemName() string
	GetSpan() position.Span
	hirItem()
}

// =============================================================================
// Module and declarations
// =============================================================================

// Module is the output of lowering one program.
type Module struct {
	Name    string
	Imports []*Import
	Items   []Item
}

// Import records an import declaration for the backend. Items is nil for
// wildcard imports.
type Import struct {
	Path  string
	Items []string
	Alias string
}

// TypeParam is a declared generic parameter.
type TypeParam struct {
	Name       string
	Constraint string
}

// Param is a typed function or lambda parameter.
type Param struct {
	Name string
	Type Type
}

// TypeDecl is a lowered type declaration.
type TypeDecl struct {
	Name       string
	Type       Type
	TypeParams []*TypeParam
	Exported   bool
	Span       position.Span
}

// Func is a lowered function. Body is nil for external functions.
type Func struct {
	Name       string
	Params     []*Param
	RetType    Type
	Body       Expr
	Effects    []Effect
	TypeParams []*TypeParam
	External   bool
	Exported   bool
	Span       position.Span
}

func (d *TypeDecl) ItemName() string       { return d.Name }
func (d *TypeDecl) GetSpan() position.Span { return d.Span }
func (d *TypeDecl) hirItem()               {}
func (f *Func) ItemName() string           { return f.Name }
func (f *Func) GetSpan() position.Span     { return f.Span }
func (f *Func) hirItem()                   {}

// HasEffect reports whether e was inferred for f.
func (f *Func) HasEffect(e Effect) bool {
	for _, have := range f.Effects {
		if have == e {
			return true
		}
	}
	return false
}

// Signature returns the function type of f.
func (f *Func) Signature() *FunctionType {
	params := make([]Field, len(f.Params))
	for i, p := range f.Params {
		params[i] = Field{Name: p.Name, Type: p.Type}
	}
	return FuncType(params, f.RetType)
}

// Func returns the function called name, or nil.
func (m *Module) Func(name string) *Func {
	for _, item := range m.Items {
		if fn, ok := item.(*Func); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

// TypeDecl returns the type declaration called name, or nil.
func (m *Module) TypeDecl(name string) *TypeDecl {
	for _, item := range m.Items {
		if td, ok := item.(*TypeDecl); ok && td.Name == name {
			return td
		}
	}
	return nil
}

// =============================================================================
// Expressions
// =============================================================================

// Literal is a constant. Value holds an int64, float64, string or bool, or
// nil for the void value of a statement-shaped block.
type Literal struct {
	Value interface{}
	Type  Type
	Span  position.Span
}

// RegexLit is a regular expression literal.
type RegexLit struct {
	Pattern string
	Flags   string
	Type    Type
	Span    position.Span
}

// Var reads a variable or names a function.
type Var struct {
	Name string
	Type Type
	Span position.Span
}

// Binary is a binary operation. The pipe operator never reaches the IR.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
	Type  Type
	Span  position.Span
}

// Unary is a prefix operation.
type Unary struct {
	Op      string
	Operand Expr
	Type    Type
	Span    position.Span
}

// Call applies Callee to Args.
type Call struct {
	Callee Expr
	Args   []Expr
	Type   Type
	Span   position.Span
}

// Member is a field access or a built-in method reference.
type Member struct {
	Object Expr
	Member string
	Type   Type
	Span   position.Span
}

// Index is an array element access.
type Index struct {
	Object Expr
	Index  Expr
	Type   Type
	Span   position.Span
}

// FieldValue is one initialised field of a record literal.
type FieldValue struct {
	Name  string
	Value Expr
}

// RecordExpr constructs a record. Fields keep source order.
type RecordExpr struct {
	TypeName string
	Fields   []FieldValue
	Type     Type
	Span     position.Span
}

// If is a conditional expression. Else may be nil, in which case the type
// is unit.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Type Type
	Span position.Span
}

// PatternKind classifies a Pattern.
type PatternKind int

const (
	PatternWildcard PatternKind = iota
	PatternLiteral
	PatternConstructor
	PatternVar
	PatternRegex
)

func (k PatternKind) String() string {
	switch k {
	case PatternWildcard:
		return "wildcard"
	case PatternLiteral:
		return "literal"
	case PatternConstructor:
		return "constructor"
	case PatternVar:
		return "var"
	case PatternRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// Pattern is a lowered match pattern. Which fields are set depends on Kind:
// Value for literals, Name and Fields for constructors, Name for variables,
// Regex, Flags and Fields for regex patterns. Bindings lists the names the
// pattern introduces into its arm.
type Pattern struct {
	Kind     PatternKind
	Name     string
	Value    string
	Fields   []string
	Named    bool
	Regex    string
	Flags    string
	Bindings []string
}

// MatchArm is one arm of a Match.
type MatchArm struct {
	Pattern *Pattern
	Guard   Expr
	Body    Expr
}

// Match selects the first arm whose pattern matches Scrutinee. Type is the
// type of the first arm's body.
type Match struct {
	Scrutinee Expr
	Arms      []*MatchArm
	Type      Type
	Span      position.Span
}

// Capture is a variable a lambda closes over.
type Capture struct {
	Name string
	Type Type
}

// Lambda is an anonymous function. Type is always a *FunctionType.
type Lambda struct {
	Params   []*Param
	Body     Expr
	Captures []Capture
	Type     *FunctionType
	Span     position.Span
}

// BlockExpr runs Stmts and yields Result. Result is nil for blocks used only
// for their statements, whose type is void.
type BlockExpr struct {
	Stmts  []Stmt
	Result Expr
	Type   Type
	Span   position.Span
}

// ArrayLit is an array literal.
type ArrayLit struct {
	Elems []Expr
	Type  *ArrayType
	Span  position.Span
}

// Generator is one "for x in xs" clause of a comprehension.
type Generator struct {
	Var      string
	VarType  Type
	Iterable Expr
}

// ListComp is a list comprehension.
type ListComp struct {
	ElemType   Type
	Generators []*Generator
	Filters    []Expr
	Output     Expr
	Type       *ArrayType
	Span       position.Span
}

// ForLoop iterates an array in expression position. Its type is void.
type ForLoop struct {
	Var      string
	VarType  Type
	Iterable Expr
	Body     Expr
	Span     position.Span
}

// WhileLoop loops in expression position. Its type is void.
type WhileLoop struct {
	Cond Expr
	Body Expr
	Span position.Span
}

func (e *Literal) GetType() Type    { return e.Type }
func (e *RegexLit) GetType() Type   { return e.Type }
func (e *Var) GetType() Type        { return e.Type }
func (e *Binary) GetType() Type     { return e.Type }
func (e *Unary) GetType() Type      { return e.Type }
func (e *Call) GetType() Type       { return e.Type }
func (e *Member) GetType() Type     { return e.Type }
func (e *Index) GetType() Type      { return e.Type }
func (e *RecordExpr) GetType() Type { return e.Type }
func (e *If) GetType() Type         { return e.Type }
func (e *Match) GetType() Type      { return e.Type }
func (e *Lambda) GetType() Type     { return e.Type }
func (e *BlockExpr) GetType() Type  { return e.Type }
func (e *ArrayLit) GetType() Type   { return e.Type }
func (e *ListComp) GetType() Type   { return e.Type }
func (e *ForLoop) GetType() Type    { return Void }
func (e *WhileLoop) GetType() Type  { return Void }

func (e *Literal) GetSpan() position.Span    { return e.Span }
func (e *RegexLit) GetSpan() position.Span   { return e.Span }
func (e *Var) GetSpan() position.Span        { return e.Span }
func (e *Binary) GetSpan() position.Span     { return e.Span }
func (e *Unary) GetSpan() position.Span      { return e.Span }
func (e *Call) GetSpan() position.Span       { return e.Span }
func (e *Member) GetSpan() position.Span     { return e.Span }
func (e *Index) GetSpan() position.Span      { return e.Span }
func (e *RecordExpr) GetSpan() position.Span { return e.Span }
func (e *If) GetSpan() position.Span         { return e.Span }
func (e *Match) GetSpan() position.Span      { return e.Span }
func (e *Lambda) GetSpan() position.Span     { return e.Span }
func (e *BlockExpr) GetSpan() position.Span  { return e.Span }
func (e *ArrayLit) GetSpan() position.Span   { return e.Span }
func (e *ListComp) GetSpan() position.Span   { return e.Span }
func (e *ForLoop) GetSpan() position.Span    { return e.Span }
func (e *WhileLoop) GetSpan() position.Span  { return e.Span }

func (e *Literal) hirExpr()    {}
func (e *RegexLit) hirExpr()   {}
func (e *Var) hirExpr()        {}
func (e *Binary) hirExpr()     {}
func (e *Unary) hirExpr()      {}
func (e *Call) hirExpr()       {}
func (e *Member) hirExpr()     {}
func (e *Index) hirExpr()      {}
func (e *RecordExpr) hirExpr() {}
func (e *If) hirExpr()         {}
func (e *Match) hirExpr()      {}
func (e *Lambda) hirExpr()     {}
func (e *BlockExpr) hirExpr()  {}
func (e *ArrayLit) hirExpr()   {}
func (e *ListComp) hirExpr()   {}
func (e *ForLoop) hirExpr()    {}
func (e *WhileLoop) hirExpr()  {}

// VoidValue is the result of a block whose last element is statement shaped.
func VoidValue(span position.Span) *Literal {
	return &Literal{Type: Void, Span: span}
}

// =============================================================================
// Statements
// =============================================================================

// VarDecl declares a local variable.
type VarDecl struct {
	Name    string
	Type    Type
	Value   Expr
	Mutable bool
	Span    position.Span
}

// Assign stores Value into an existing variable.
type Assign struct {
	Target *Var
	Value  Expr
	Span   position.Span
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X    Expr
	Span position.Span
}

// Return leaves the enclosing function. Value is nil in void functions.
type Return struct {
	Value Expr
	Span  position.Span
}

// Break leaves the innermost loop.
type Break struct {
	Span position.Span
}

// Continue starts the next iteration of the innermost loop.
type Continue struct {
	Span position.Span
}

// IfStmt is an if in statement position.
type IfStmt struct {
	Cond Expr
	Then *Block
	Else *Block
	Span position.Span
}

// WhileStmt is a while loop in statement position.
type WhileStmt struct {
	Cond Expr
	Body *Block
	Span position.Span
}

// ForStmt is a for loop in statement position.
type ForStmt struct {
	Var      string
	VarType  Type
	Iterable Expr
	Body     *Block
	Span     position.Span
}

// Block is a statement list.
type Block struct {
	Stmts []Stmt
	Span  position.Span
}

func (s *VarDecl) GetSpan() position.Span   { return s.Span }
func (s *Assign) GetSpan() position.Span    { return s.Span }
func (s *ExprStmt) GetSpan() position.Span  { return s.Span }
func (s *Return) GetSpan() position.Span    { return s.Span }
func (s *Break) GetSpan() position.Span     { return s.Span }
func (s *Continue) GetSpan() position.Span  { return s.Span }
func (s *IfStmt) GetSpan() position.Span    { return s.Span }
func (s *WhileStmt) GetSpan() position.Span { return s.Span }
func (s *ForStmt) GetSpan() position.Span   { return s.Span }
func (s *Block) GetSpan() position.Span     { return s.Span }

func (s *VarDecl) hirStmt()   {}
func (s *Assign) hirStmt()    {}
func (s *ExprStmt) hirStmt()  {}
func (s *Return) hirStmt()    {}
func (s *Break) hirStmt()     {}
func (s *Continue) hirStmt()  {}
func (s *IfStmt) hirStmt()    {}
func (s *WhileStmt) hirStmt() {}
func (s *ForStmt) hirStmt()   {}
func (s *Block) hirStmt()     {}
