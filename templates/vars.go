package templates

import (
	"sort"
	"text/template"
	"text/template/parse"
)

// referencedVars lists the top-level context keys a template reads: fields on
// the root dot and $.x anywhere. Fields inside range/with bodies are relative to
// the rebound dot and are not context keys. Associated templates (define and
// block) are followed when they are invoked with the root data.
func referencedVars(tmpl *template.Template) []string {
	if tmpl == nil || tmpl.Tree == nil || tmpl.Tree.Root == nil {
		return nil
	}

	w := &varWalker{
		set:     tmpl,
		seen:    make(map[string]struct{}),
		entered: map[string]bool{tmpl.Name(): true},
	}
	w.walk(tmpl.Tree.Root, true)

	out := make([]string, 0, len(w.seen))
	for name := range w.seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type varWalker struct {
	set     *template.Template
	seen    map[string]struct{}
	entered map[string]bool
}

func (w *varWalker) walk(node parse.Node, rootDot bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			w.walk(child, rootDot)
		}
	case *parse.ActionNode:
		w.walk(n.Pipe, rootDot)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			w.walk(cmd, rootDot)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			w.walk(arg, rootDot)
		}
	case *parse.ChainNode:
		w.walk(n.Node, rootDot)
	case *parse.FieldNode:
		if rootDot && len(n.Ident) > 0 {
			w.seen[n.Ident[0]] = struct{}{}
		}
	case *parse.VariableNode:
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			w.seen[n.Ident[1]] = struct{}{}
		}
	case *parse.IfNode:
		w.walk(n.Pipe, rootDot)
		w.walk(n.List, rootDot)
		w.walk(n.ElseList, rootDot)
	case *parse.RangeNode:
		w.walk(n.Pipe, rootDot)
		w.walk(n.List, false)
		w.walk(n.ElseList, rootDot)
	case *parse.WithNode:
		w.walk(n.Pipe, rootDot)
		w.walk(n.List, false)
		w.walk(n.ElseList, rootDot)
	case *parse.TemplateNode:
		w.walk(n.Pipe, rootDot)
		if passesRoot(n.Pipe, rootDot) {
			w.enter(n.Name)
		}
	}
}

func (w *varWalker) enter(name string) {
	if w.entered[name] {
		return
	}
	w.entered[name] = true

	t := w.set.Lookup(name)
	if t == nil || t.Tree == nil {
		return
	}
	w.walk(t.Tree.Root, true)
}

// passesRoot reports whether a template invocation hands the callee the root
// data, either as "." at the top level or as "$".
func passesRoot(pipe *parse.PipeNode, rootDot bool) bool {
	if pipe == nil || len(pipe.Decl) > 0 || len(pipe.Cmds) != 1 || len(pipe.Cmds[0].Args) != 1 {
		return false
	}

	switch arg := pipe.Cmds[0].Args[0].(type) {
	case *parse.DotNode:
		return rootDot
	case *parse.VariableNode:
		return len(arg.Ident) == 1 && arg.Ident[0] == "$"
	}
	return false
}
