package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders node as a parenthesised tree. Source positions are left out,
// so two parses of the same text always dump identically.
func Dump(node Node) string {
	var d dumper
	d.node(node)
	return d.String()
}

type dumper struct {
	strings.Builder
}

func (d *dumper) open(tag string) { d.WriteString("(" + tag) }
func (d *dumper) close()          { d.WriteString(")") }
func (d *dumper) sp()             { d.WriteString(" ") }

func (d *dumper) str(s string) { d.WriteString(strconv.Quote(s)) }

func (d *dumper) names(names []string) {
	d.WriteString("[" + strings.Join(names, " ") + "]")
}

func (d *dumper) opt(n Node) {
	d.sp()
	if n == nil {
		d.WriteString("_")
		return
	}
	d.node(n)
}

func (d *dumper) exprs(tag string, list []Expr) {
	d.sp()
	d.open(tag)
	for _, e := range list {
		d.opt(e)
	}
	d.close()
}

func (d *dumper) stmts(list []Stmt) {
	d.sp()
	d.open("stmts")
	for _, s := range list {
		d.opt(s)
	}
	d.close()
}

func (d *dumper) typeParams(list []*TypeParam) {
	if len(list) == 0 {
		return
	}
	d.WriteString(" <")
	for i, tp := range list {
		if i > 0 {
			d.sp()
		}
		d.WriteString(tp.Name)
		if tp.Constraint != "" {
			d.WriteString(":" + tp.Constraint)
		}
	}
	d.WriteString(">")
}

func (d *dumper) params(list []*Param) {
	d.sp()
	d.open("params")
	for _, p := range list {
		d.sp()
		d.open("param " + p.Name)
		if p.Type != nil {
			d.opt(p.Type)
		}
		d.close()
	}
	d.close()
}

func (d *dumper) fields(list []*Field) {
	for _, f := range list {
		d.sp()
		d.open("field " + f.Name)
		d.opt(f.Type)
		d.close()
	}
}

func (d *dumper) node(node Node) {
	switch n := node.(type) {
	case *Program:
		d.open("program")
		if n.Module != nil {
			d.opt(n.Module)
		}
		for _, imp := range n.Imports {
			d.opt(imp)
		}
		for _, decl := range n.Decls {
			d.opt(decl)
		}
		d.close()
	case *ModuleDecl:
		d.open("module " + n.Name)
		d.close()
	case *ImportDecl:
		d.open("import ")
		d.str(n.Path)
		d.sp()
		d.names(n.Items)
		fmt.Fprintf(d, " wildcard=%t alias=%q", n.Wildcard, n.Alias)
		d.close()

	case *FuncDecl:
		d.open("fn " + n.Name)
		d.typeParams(n.TypeParams)
		d.params(n.Params)
		d.opt(n.RetType)
		d.opt(n.Body)
		if n.Exported {
			d.WriteString(" exported")
		}
		if n.External {
			d.WriteString(" external")
		}
		d.close()
	case *TypeDecl:
		d.open("type " + n.Name)
		d.typeParams(n.TypeParams)
		d.opt(n.Type)
		if n.Exported {
			d.WriteString(" exported")
		}
		d.close()

	case *PrimType:
		d.WriteString(n.Name)
	case *RecordType:
		d.open("record")
		d.fields(n.Fields)
		d.close()
	case *SumType:
		d.open("sum")
		for _, v := range n.Variants {
			d.sp()
			d.open("variant " + v.Name)
			d.fields(v.Fields)
			d.close()
		}
		d.close()
	case *EnumType:
		d.open("enum ")
		d.names(n.Variants)
		d.close()
	case *ArrayType:
		d.open("array")
		d.opt(n.Elem)
		d.close()
	case *GenericType:
		d.open("generic")
		d.opt(n.Base)
		for _, a := range n.Args {
			d.opt(a)
		}
		d.close()
	case *FunctionType:
		d.open("fntype")
		for _, p := range n.Params {
			d.opt(p)
		}
		d.WriteString(" ->")
		d.opt(n.Ret)
		d.close()
	case *OpaqueType:
		d.WriteString("opaque")

	case *IntLit:
		d.open("int " + strconv.FormatInt(n.Value, 10))
		d.close()
	case *FloatLit:
		d.open("float " + strconv.FormatFloat(n.Value, 'g', -1, 64))
		d.close()
	case *StringLit:
		d.open("string ")
		d.str(n.Value)
		d.close()
	case *RegexLit:
		d.open("regex ")
		d.str(n.Pattern)
		d.sp()
		d.str(n.Flags)
		d.close()
	case *VarRef:
		d.open("var " + n.Name)
		d.close()
	case *BinaryOp:
		d.open("binary " + n.Op)
		d.opt(n.Left)
		d.opt(n.Right)
		d.close()
	case *UnaryOp:
		d.open("unary " + n.Op)
		d.opt(n.Operand)
		d.close()
	case *Call:
		d.open("call")
		d.opt(n.Callee)
		d.exprs("args", n.Args)
		d.close()
	case *MemberAccess:
		d.open("member " + n.Member)
		d.opt(n.Object)
		d.close()
	case *IndexAccess:
		d.open("index")
		d.opt(n.Object)
		d.opt(n.Index)
		d.close()
	case *RecordLit:
		d.open("record-lit " + n.TypeName)
		for _, f := range n.Fields {
			d.sp()
			d.open("init " + f.Name)
			d.opt(f.Value)
			d.close()
		}
		d.close()
	case *IfExpr:
		d.open("if")
		d.opt(n.Cond)
		d.opt(n.Then)
		d.opt(n.Else)
		d.close()
	case *MatchExpr:
		d.open("match")
		d.opt(n.Scrutinee)
		for _, arm := range n.Arms {
			d.sp()
			d.open("arm")
			d.opt(arm.Pattern)
			d.opt(arm.Guard)
			d.opt(arm.Body)
			d.close()
		}
		d.close()
	case *Lambda:
		d.open("lambda")
		d.params(n.Params)
		d.opt(n.Body)
		d.close()
	case *Block:
		d.open("block")
		d.stmts(n.Stmts)
		d.close()
	case *BlockExpr:
		d.open("block-expr")
		d.stmts(n.Stmts)
		d.opt(n.Result)
		d.close()
	case *DoExpr:
		d.open("do")
		d.stmts(n.Body)
		d.close()
	case *ArrayLiteral:
		d.open("array-lit")
		for _, e := range n.Elems {
			d.opt(e)
		}
		d.close()
	case *ListComprehension:
		d.open("comprehension")
		d.opt(n.Output)
		for _, g := range n.Generators {
			d.sp()
			d.open("for " + g.Var)
			d.opt(g.Iterable)
			d.close()
		}
		d.exprs("filters", n.Filters)
		d.close()
	case *ForLoop:
		d.open("for " + n.Var)
		d.opt(n.Iterable)
		d.opt(n.Body)
		d.close()
	case *WhileLoop:
		d.open("while")
		d.opt(n.Cond)
		d.opt(n.Body)
		d.close()

	case *VariableDecl:
		if n.Mutable {
			d.open("let-mut " + n.Name)
		} else {
			d.open("let " + n.Name)
		}
		d.opt(n.Type)
		d.opt(n.Value)
		d.close()
	case *Assignment:
		d.open("assign " + n.Target.Name)
		d.opt(n.Value)
		d.close()
	case *Return:
		d.open("return")
		d.opt(n.Value)
		d.close()
	case *Break:
		d.WriteString("(break)")
	case *Continue:
		d.WriteString("(continue)")
	case *ExprStmt:
		d.open("expr")
		d.opt(n.X)
		d.close()

	case *WildcardPattern:
		d.WriteString("(pwild)")
	case *LiteralPattern:
		d.open("plit " + n.Value)
		d.close()
	case *ConstructorPattern:
		d.open("pctor " + n.Name + " ")
		d.names(n.Fields)
		if n.Named {
			d.WriteString(" named")
		}
		d.close()
	case *VarPattern:
		d.open("pvar " + n.Name)
		d.close()
	case *RegexPattern:
		d.open("pregex ")
		d.str(n.Pattern)
		d.sp()
		d.str(n.Flags)
		d.sp()
		d.names(n.Bindings)
		d.close()

	default:
		fmt.Fprintf(d, "(unknown %T)", node)
	}
}
