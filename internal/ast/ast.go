// Package ast defines the syntax tree produced by the Aurora parser.
//
// The node set is closed: every category (declarations, type expressions,
// expressions, statements and patterns) is an interface sealed by an
// unexported marker method, and consumers dispatch with exhaustive type
// switches. Nodes are built once by the parser, with their source span and
// declaration flags supplied at construction, and are never mutated after.
package ast

import "github.com/aurora-lang/aurora/internal/position"

// Node is the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span covered by this node
	GetSpan() position.Span
}

// Decl represents a top-level declaration
type Decl interface {
	Node
	declNode()
}

// TypeExpr represents a type as written in source
type TypeExpr interface {
	Node
	typeNode()
}

// Expr represents all expression nodes
type Expr interface {
	Node
	exprNode()
}

// Stmt represents all statement nodes
type Stmt interface {
	Node
	stmtNode()
}

// Pattern represents a match arm pattern
type Pattern interface {
	Node
	patternNode()
}

// ===== Program Structure =====

// Program represents the root of the AST
type Program struct {
	Span    position.Span
	Module  *ModuleDecl // nil when the file has no module header
	Imports []*ImportDecl
	Decls   []Decl
}

// ModuleDecl names the module a file belongs to: module Geometry::Shapes
type ModuleDecl struct {
	Span position.Span
	Name string
}

// ImportDecl is the common shape of every import form.
//
//	import { a, b } from Path     Items = [a b]
//	import * as M from Path       Wildcard, Alias = M
//	import Path                   Wildcard
//	import Path::{a, b}           Items = [a b]
type ImportDecl struct {
	Span     position.Span
	Path     string
	Items    []string
	Wildcard bool
	Alias    string
}

func (p *Program) GetSpan() position.Span    { return p.Span }
func (m *ModuleDecl) GetSpan() position.Span { return m.Span }
func (i *ImportDecl) GetSpan() position.Span { return i.Span }

// ===== Declarations =====

// FuncDecl represents fn name<T>(params) -> ret = body. External functions
// have no body.
type FuncDecl struct {
	Span       position.Span
	Name       string
	TypeParams []*TypeParam
	Params     []*Param
	RetType    TypeExpr
	Body       Expr
	Exported   bool
	External   bool
}

// TypeDecl represents type Name<T> = type
type TypeDecl struct {
	Span       position.Span
	Name       string
	TypeParams []*TypeParam
	Type       TypeExpr
	Exported   bool
}

// Param is a function or lambda parameter. Type is nil for an
// unannotated lambda parameter.
type Param struct {
	Span position.Span
	Name string
	Type TypeExpr
}

// TypeParam is a generic parameter with an optional constraint name.
type TypeParam struct {
	Span       position.Span
	Name       string
	Constraint string
}

func (f *FuncDecl) GetSpan() position.Span  { return f.Span }
func (t *TypeDecl) GetSpan() position.Span  { return t.Span }
func (p *Param) GetSpan() position.Span     { return p.Span }
func (t *TypeParam) GetSpan() position.Span { return t.Span }

func (*FuncDecl) declNode() {}
func (*TypeDecl) declNode() {}

// ===== Types =====

// PrimType is a primitive or a named type reference.
type PrimType struct {
	Span position.Span
	Name string
}

// Field is a named, typed member of a record or sum variant.
type Field struct {
	Span position.Span
	Name string
	Type TypeExpr
}

// RecordType is { name: type, ... }
type RecordType struct {
	Span   position.Span
	Fields []*Field
}

// Variant is one alternative of a sum type. Positional fields are named
// field0, field1, ...
type Variant struct {
	Span   position.Span
	Name   string
	Fields []*Field
}

// SumType is Variant(...) | Variant { ... } | Variant
type SumType struct {
	Span     position.Span
	Variants []*Variant
}

// EnumType is enum { A, B, C }
type EnumType struct {
	Span     position.Span
	Variants []string
}

// ArrayType is T[]
type ArrayType struct {
	Span position.Span
	Elem TypeExpr
}

// GenericType is Base<T1, T2>
type GenericType struct {
	Span position.Span
	Base TypeExpr
	Args []TypeExpr
}

// FunctionType is fn(T, U) -> V
type FunctionType struct {
	Span   position.Span
	Params []TypeExpr
	Ret    TypeExpr
}

// OpaqueType stands for a type declared without a definition: type Handle
type OpaqueType struct {
	Span position.Span
}

func (t *PrimType) GetSpan() position.Span     { return t.Span }
func (f *Field) GetSpan() position.Span        { return f.Span }
func (t *RecordType) GetSpan() position.Span   { return t.Span }
func (v *Variant) GetSpan() position.Span      { return v.Span }
func (t *SumType) GetSpan() position.Span      { return t.Span }
func (t *EnumType) GetSpan() position.Span     { return t.Span }
func (t *ArrayType) GetSpan() position.Span    { return t.Span }
func (t *GenericType) GetSpan() position.Span  { return t.Span }
func (t *FunctionType) GetSpan() position.Span { return t.Span }
func (t *OpaqueType) GetSpan() position.Span   { return t.Span }

func (*PrimType) typeNode()     {}
func (*RecordType) typeNode()   {}
func (*SumType) typeNode()      {}
func (*EnumType) typeNode()     {}
func (*ArrayType) typeNode()    {}
func (*GenericType) typeNode()  {}
func (*FunctionType) typeNode() {}
func (*OpaqueType) typeNode()   {}

// ===== Expressions =====

type IntLit struct {
	Span  position.Span
	Value int64
}

type FloatLit struct {
	Span  position.Span
	Value float64
}

type StringLit struct {
	Span  position.Span
	Value string
}

type RegexLit struct {
	Span    position.Span
	Pattern string
	Flags   string
}

type VarRef struct {
	Span position.Span
	Name string
}

type BinaryOp struct {
	Span  position.Span
	Op    string
	Left  Expr
	Right Expr
}

type UnaryOp struct {
	Span    position.Span
	Op      string
	Operand Expr
}

type Call struct {
	Span   position.Span
	Callee Expr
	Args   []Expr
}

type MemberAccess struct {
	Span   position.Span
	Object Expr
	Member string
}

type IndexAccess struct {
	Span   position.Span
	Object Expr
	Index  Expr
}

// FieldInit is one name: value entry of a record literal.
type FieldInit struct {
	Span  position.Span
	Name  string
	Value Expr
}

// RecordLit is Name { f: v } or, with an empty TypeName, { f: v }.
// Fields keep their source order.
type RecordLit struct {
	Span     position.Span
	TypeName string
	Fields   []*FieldInit
}

// IfExpr has a nil Else when the else branch is omitted.
type IfExpr struct {
	Span position.Span
	Cond Expr
	Then Expr
	Else Expr
}

type MatchArm struct {
	Span    position.Span
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

type MatchExpr struct {
	Span      position.Span
	Scrutinee Expr
	Arms      []*MatchArm
}

type Lambda struct {
	Span   position.Span
	Params []*Param
	Body   Expr
}

// Block is { stmt* }.
type Block struct {
	Span  position.Span
	Stmts []Stmt
}

// BlockExpr is a statement sequence followed by a result expression.
type BlockExpr struct {
	Span   position.Span
	Stmts  []Stmt
	Result Expr
}

// DoExpr is do item* end.
type DoExpr struct {
	Span position.Span
	Body []Stmt
}

type ArrayLiteral struct {
	Span  position.Span
	Elems []Expr
}

// Generator is one "for x in xs" clause of a comprehension.
type Generator struct {
	Span     position.Span
	Var      string
	Iterable Expr
}

type ListComprehension struct {
	Span       position.Span
	Output     Expr
	Generators []*Generator
	Filters    []Expr
}

type ForLoop struct {
	Span     position.Span
	Var      string
	Iterable Expr
	Body     Expr
}

type WhileLoop struct {
	Span position.Span
	Cond Expr
	Body Expr
}

func (e *IntLit) GetSpan() position.Span            { return e.Span }
func (e *FloatLit) GetSpan() position.Span          { return e.Span }
func (e *StringLit) GetSpan() position.Span         { return e.Span }
func (e *RegexLit) GetSpan() position.Span          { return e.Span }
func (e *VarRef) GetSpan() position.Span            { return e.Span }
func (e *BinaryOp) GetSpan() position.Span          { return e.Span }
func (e *UnaryOp) GetSpan() position.Span           { return e.Span }
func (e *Call) GetSpan() position.Span              { return e.Span }
func (e *MemberAccess) GetSpan() position.Span      { return e.Span }
func (e *IndexAccess) GetSpan() position.Span       { return e.Span }
func (e *FieldInit) GetSpan() position.Span         { return e.Span }
func (e *RecordLit) GetSpan() position.Span         { return e.Span }
func (e *IfExpr) GetSpan() position.Span            { return e.Span }
func (e *MatchArm) GetSpan() position.Span          { return e.Span }
func (e *MatchExpr) GetSpan() position.Span         { return e.Span }
func (e *Lambda) GetSpan() position.Span            { return e.Span }
func (e *Block) GetSpan() position.Span             { return e.Span }
func (e *BlockExpr) GetSpan() position.Span         { return e.Span }
func (e *DoExpr) GetSpan() position.Span            { return e.Span }
func (e *ArrayLiteral) GetSpan() position.Span      { return e.Span }
func (e *Generator) GetSpan() position.Span         { return e.Span }
func (e *ListComprehension) GetSpan() position.Span { return e.Span }
func (e *ForLoop) GetSpan() position.Span           { return e.Span }
func (e *WhileLoop) GetSpan() position.Span         { return e.Span }

func (*IntLit) exprNode()            {}
func (*FloatLit) exprNode()          {}
func (*StringLit) exprNode()         {}
func (*RegexLit) exprNode()          {}
func (*VarRef) exprNode()            {}
func (*BinaryOp) exprNode()          {}
func (*UnaryOp) exprNode()           {}
func (*Call) exprNode()              {}
func (*MemberAccess) exprNode()      {}
func (*IndexAccess) exprNode()       {}
func (*RecordLit) exprNode()         {}
func (*IfExpr) exprNode()            {}
func (*MatchExpr) exprNode()         {}
func (*Lambda) exprNode()            {}
func (*Block) exprNode()             {}
func (*BlockExpr) exprNode()         {}
func (*DoExpr) exprNode()            {}
func (*ArrayLiteral) exprNode()      {}
func (*ListComprehension) exprNode() {}
func (*ForLoop) exprNode()           {}
func (*WhileLoop) exprNode()         {}

// ===== Statements =====

// VariableDecl is let [mut] name[: type] = value
type VariableDecl struct {
	Span    position.Span
	Name    string
	Type    TypeExpr
	Value   Expr
	Mutable bool
}

type Assignment struct {
	Span   position.Span
	Target *VarRef
	Value  Expr
}

// Return has a nil Value for a bare return.
type Return struct {
	Span  position.Span
	Value Expr
}

type Break struct {
	Span position.Span
}

type Continue struct {
	Span position.Span
}

type ExprStmt struct {
	Span position.Span
	X    Expr
}

func (s *VariableDecl) GetSpan() position.Span { return s.Span }
func (s *Assignment) GetSpan() position.Span   { return s.Span }
func (s *Return) GetSpan() position.Span       { return s.Span }
func (s *Break) GetSpan() position.Span        { return s.Span }
func (s *Continue) GetSpan() position.Span     { return s.Span }
func (s *ExprStmt) GetSpan() position.Span     { return s.Span }

func (*VariableDecl) stmtNode() {}
func (*Assignment) stmtNode()   {}
func (*Return) stmtNode()       {}
func (*Break) stmtNode()        {}
func (*Continue) stmtNode()     {}
func (*ExprStmt) stmtNode()     {}

// ===== Patterns =====

type WildcardPattern struct {
	Span position.Span
}

// LiteralPattern matches an integer or float literal. Value holds the
// literal as written.
type LiteralPattern struct {
	Span    position.Span
	Value   string
	IsFloat bool
}

// ConstructorPattern is Name(a, b), Name { a, b } or a bare uppercase Name.
type ConstructorPattern struct {
	Span   position.Span
	Name   string
	Fields []string
	Named  bool
}

// VarPattern binds the scrutinee to a lowercase name.
type VarPattern struct {
	Span position.Span
	Name string
}

// RegexPattern is /re/flags as [a, b, _]
type RegexPattern struct {
	Span     position.Span
	Pattern  string
	Flags    string
	Bindings []string
}

func (p *WildcardPattern) GetSpan() position.Span    { return p.Span }
func (p *LiteralPattern) GetSpan() position.Span     { return p.Span }
func (p *ConstructorPattern) GetSpan() position.Span { return p.Span }
func (p *VarPattern) GetSpan() position.Span         { return p.Span }
func (p *RegexPattern) GetSpan() position.Span       { return p.Span }

func (*WildcardPattern) patternNode()    {}
func (*LiteralPattern) patternNode()     {}
func (*ConstructorPattern) patternNode() {}
func (*VarPattern) patternNode()         {}
func (*RegexPattern) patternNode()       {}
