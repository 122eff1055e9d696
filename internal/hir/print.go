package hir

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders m as indented text. Every expression is followed by its
// type, as in "(a:i32 + b:i32):i32". The output only depends on the module,
// which makes it suitable for golden comparisons.
func Print(m *Module) string {
	var p printer
	p.module(m)
	return p.String()
}

// PrintExpr renders a single expression on one line.
func PrintExpr(e Expr) string {
	var p printer
	return p.expr(e)
}

type printer struct {
	strings.Builder
}

func (p *printer) line(indent int, format string, args ...interface{}) {
	p.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(p, format, args...)
	p.WriteString("\n")
}

func (p *printer) module(m *Module) {
	name := m.Name
	if name == "" {
		name = "main"
	}
	p.line(0, "module %s", name)

	for _, imp := range m.Imports {
		text := "import " + imp.Path
		if imp.Items != nil {
			text += " {" + strings.Join(imp.Items, ", ") + "}"
		}
		if imp.Alias != "" {
			text += " as " + imp.Alias
		}
		p.line(0, "%s", text)
	}

	for _, item := range m.Items {
		switch it := item.(type) {
		case *TypeDecl:
			p.typeDecl(it)
		case *Func:
			p.function(it)
		}
	}
}

func typeParams(params []*TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, tp := range params {
		parts[i] = tp.Name
		if tp.Constraint != "" {
			parts[i] += ": " + tp.Constraint
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (p *printer) typeDecl(d *TypeDecl) {
	prefix := ""
	if d.Exported {
		prefix = "export "
	}
	p.line(0, "%stype %s%s = %s", prefix, d.Name, typeParams(d.TypeParams), Describe(d.Type))
}

func (p *printer) function(f *Func) {
	var b strings.Builder
	if f.Exported {
		b.WriteString("export ")
	}
	if f.External {
		b.WriteString("extern ")
	}
	b.WriteString("fn " + f.Name + typeParams(f.TypeParams) + "(")
	for i, param := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.Name + ": " + param.Type.String())
	}
	b.WriteString(") -> " + f.RetType.String())
	if len(f.Effects) > 0 {
		effects := make([]string, len(f.Effects))
		for i, e := range f.Effects {
			effects[i] = string(e)
		}
		b.WriteString(" [" + strings.Join(effects, " ") + "]")
	}
	p.line(0, "%s", b.String())

	switch body := f.Body.(type) {
	case nil:
	case *BlockExpr:
		for _, s := range body.Stmts {
			p.line(1, "%s", p.stmt(s))
		}
		if body.Result != nil {
			p.line(1, "=> %s", p.expr(body.Result))
		}
	default:
		p.line(1, "=> %s", p.expr(body))
	}
}

func typed(text string, t Type) string {
	if t == nil {
		return text + ":?"
	}
	return text + ":" + t.String()
}

func (p *printer) exprs(list []Expr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = p.expr(e)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) expr(e Expr) string {
	switch e := e.(type) {
	case *Literal:
		return typed(literalText(e.Value), e.Type)
	case *RegexLit:
		return typed("/"+e.Pattern+"/"+e.Flags, e.Type)
	case *Var:
		return typed(e.Name, e.Type)
	case *Binary:
		return typed("("+p.expr(e.Left)+" "+e.Op+" "+p.expr(e.Right)+")", e.Type)
	case *Unary:
		return typed("("+e.Op+p.expr(e.Operand)+")", e.Type)
	case *Call:
		return typed(p.expr(e.Callee)+"("+p.exprs(e.Args)+")", e.Type)
	case *Member:
		return typed(p.expr(e.Object)+"."+e.Member, e.Type)
	case *Index:
		return typed(p.expr(e.Object)+"["+p.expr(e.Index)+"]", e.Type)
	case *RecordExpr:
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = f.Name + ": " + p.expr(f.Value)
		}
		return typed(e.TypeName+"{"+strings.Join(fields, ", ")+"}", e.Type)
	case *If:
		text := "(if " + p.expr(e.Cond) + " then " + p.expr(e.Then)
		if e.Else != nil {
			text += " else " + p.expr(e.Else)
		}
		return typed(text+")", e.Type)
	case *Match:
		arms := make([]string, len(e.Arms))
		for i, arm := range e.Arms {
			arms[i] = patternText(arm.Pattern)
			if arm.Guard != nil {
				arms[i] += " if " + p.expr(arm.Guard)
			}
			arms[i] += " => " + p.expr(arm.Body)
		}
		return typed("(match "+p.expr(e.Scrutinee)+" {"+strings.Join(arms, ", ")+"})", e.Type)
	case *Lambda:
		params := make([]string, len(e.Params))
		for i, param := range e.Params {
			params[i] = param.Name + ": " + param.Type.String()
		}
		return typed("(fn("+strings.Join(params, ", ")+") => "+p.expr(e.Body)+")", e.Type)
	case *BlockExpr:
		parts := make([]string, 0, len(e.Stmts)+1)
		for _, s := range e.Stmts {
			parts = append(parts, p.stmt(s))
		}
		if e.Result != nil {
			parts = append(parts, p.expr(e.Result))
		}
		return typed("{"+strings.Join(parts, "; ")+"}", e.Type)
	case *ArrayLit:
		return typed("["+p.exprs(e.Elems)+"]", e.Type)
	case *ListComp:
		text := "[" + p.expr(e.Output)
		for _, g := range e.Generators {
			text += " for " + g.Var + " in " + p.expr(g.Iterable)
		}
		for _, f := range e.Filters {
			text += " if " + p.expr(f)
		}
		return typed(text+"]", e.Type)
	case *ForLoop:
		return typed("(for "+e.Var+": "+e.VarType.String()+" in "+p.expr(e.Iterable)+" "+p.expr(e.Body)+")", e.GetType())
	case *WhileLoop:
		return typed("(while "+p.expr(e.Cond)+" "+p.expr(e.Body)+")", e.GetType())
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func (p *printer) block(b *Block) string {
	if b == nil {
		return "{}"
	}
	parts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		parts[i] = p.stmt(s)
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

func (p *printer) stmt(s Stmt) string {
	switch s := s.(type) {
	case *VarDecl:
		kw := "let "
		if s.Mutable {
			kw = "let mut "
		}
		return kw + s.Name + ": " + s.Type.String() + " = " + p.expr(s.Value)
	case *Assign:
		return s.Target.Name + " = " + p.expr(s.Value)
	case *ExprStmt:
		return p.expr(s.X)
	case *Return:
		if s.Value == nil {
			return "return"
		}
		return "return " + p.expr(s.Value)
	case *Break:
		return "break"
	case *Continue:
		return "continue"
	case *IfStmt:
		text := "if " + p.expr(s.Cond) + " " + p.block(s.Then)
		if s.Else != nil {
			text += " else " + p.block(s.Else)
		}
		return text
	case *WhileStmt:
		return "while " + p.expr(s.Cond) + " " + p.block(s.Body)
	case *ForStmt:
		return "for " + s.Var + ": " + s.VarType.String() + " in " + p.expr(s.Iterable) + " " + p.block(s.Body)
	case *Block:
		return p.block(s)
	default:
		return fmt.Sprintf("<%T>", s)
	}
}

func literalText(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "()"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func patternText(pat *Pattern) string {
	if pat == nil {
		return "_"
	}
	switch pat.Kind {
	case PatternLiteral:
		return pat.Value
	case PatternConstructor:
		switch {
		case pat.Named:
			return pat.Name + "{" + strings.Join(pat.Fields, ", ") + "}"
		case len(pat.Fields) > 0:
			return pat.Name + "(" + strings.Join(pat.Fields, ", ") + ")"
		default:
			return pat.Name
		}
	case PatternVar:
		return pat.Name
	case PatternRegex:
		text := "/" + pat.Regex + "/" + pat.Flags
		if len(pat.Fields) > 0 {
			text += " as [" + strings.Join(pat.Fields, ", ") + "]"
		}
		return text
	default:
		return "_"
	}
}
