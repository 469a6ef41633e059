package cache

import (
	"reflect"
	"testing"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/compiler/parser"
)

const (
	parentSchemaSource = `package family

@enumtrait(family::ParentTrait)
schema ParentTrait {
    @enumtrait::Str(preset(Variant))
    name: str
}
`

	// Declares ChildTrait and implements ParentTrait
	childSchemaSource = `package family

schema ChildTrait {
    @enumtrait::Str(preset(Variant))
    name: str
}

enum Parents: ParentTrait { Alpha }
`

	kidsSource = `package other

enum Kids: family::ChildTrait { One, Two }
`
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, lexErrors, parseErrors := parser.ParseSource(source)
	if len(lexErrors) > 0 || len(parseErrors) > 0 {
		t.Fatalf("parse failed: %v %v", lexErrors, parseErrors)
	}
	return program
}

func familyGraph(t *testing.T) *DependencyGraph {
	t.Helper()
	dg := NewDependencyGraph()
	dg.BuildDependencies("parent.tenum", mustParse(t, parentSchemaSource))
	dg.BuildDependencies("child.tenum", mustParse(t, childSchemaSource))
	dg.BuildDependencies("kids.tenum", mustParse(t, kidsSource))
	return dg
}

func TestDependencyGraph_Edges(t *testing.T) {
	dg := familyGraph(t)

	if got := dg.GetDependencies("child.tenum"); !reflect.DeepEqual(got, []string{"parent.tenum"}) {
		t.Errorf("GetDependencies(child) = %v", got)
	}
	if got := dg.GetDependents("parent.tenum"); !reflect.DeepEqual(got, []string{"child.tenum"}) {
		t.Errorf("GetDependents(parent) = %v", got)
	}
	if got := dg.GetDependencies("kids.tenum"); !reflect.DeepEqual(got, []string{"child.tenum"}) {
		t.Errorf("GetDependencies(kids) = %v", got)
	}
	if got := dg.GetDependencies("unknown.tenum"); len(got) != 0 {
		t.Errorf("GetDependencies(unknown) = %v, want empty", got)
	}
}

func TestDependencyGraph_OrderIndependent(t *testing.T) {
	dg := NewDependencyGraph()
	// Implementers parsed before the declaring file still get linked
	dg.BuildDependencies("kids.tenum", mustParse(t, kidsSource))
	dg.BuildDependencies("child.tenum", mustParse(t, childSchemaSource))

	if got := dg.GetDependents("child.tenum"); !reflect.DeepEqual(got, []string{"kids.tenum"}) {
		t.Errorf("GetDependents(child) = %v", got)
	}
}

func TestDependencyGraph_TransitiveDependents(t *testing.T) {
	dg := familyGraph(t)

	got := dg.GetTransitiveDependents("parent.tenum")
	want := []string{"child.tenum", "kids.tenum"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetTransitiveDependents(parent) = %v, want %v", got, want)
	}

	if got := dg.GetTransitiveDependents("kids.tenum"); len(got) != 0 {
		t.Errorf("GetTransitiveDependents(kids) = %v, want empty", got)
	}
}

func TestDependencyGraph_Owner(t *testing.T) {
	dg := familyGraph(t)

	tests := []struct {
		id    string
		owner string
		ok    bool
	}{
		{"family::ParentTrait", "parent.tenum", true},
		{"family::ChildTrait", "child.tenum", true},
		{"family::Missing", "", false},
	}
	for _, tt := range tests {
		owner, ok := dg.Owner(tt.id)
		if owner != tt.owner || ok != tt.ok {
			t.Errorf("Owner(%s) = %q, %v; want %q, %v", tt.id, owner, ok, tt.owner, tt.ok)
		}
	}
}

func TestDependencyGraph_RemoveFile(t *testing.T) {
	dg := familyGraph(t)

	dg.RemoveFile("child.tenum")

	if dg.Size() != 2 {
		t.Errorf("Size() = %d, want 2", dg.Size())
	}
	if got := dg.GetDependents("parent.tenum"); len(got) != 0 {
		t.Errorf("GetDependents(parent) after removal = %v", got)
	}
	if got := dg.GetDependencies("kids.tenum"); len(got) != 0 {
		t.Errorf("GetDependencies(kids) after removal = %v", got)
	}
	if _, ok := dg.Owner("family::ChildTrait"); ok {
		t.Error("removed file still owns its schema")
	}

	dg.Clear()
	if dg.Size() != 0 {
		t.Errorf("Size() after Clear() = %d", dg.Size())
	}
}

func TestSchemaIdentifier(t *testing.T) {
	parent := mustParse(t, parentSchemaSource)
	child := mustParse(t, childSchemaSource)

	if got := SchemaIdentifier(parent.Schemas[0], parent.Package); got != "family::ParentTrait" {
		t.Errorf("SchemaIdentifier(annotated) = %s", got)
	}
	if got := SchemaIdentifier(child.Schemas[0], child.Package); got != "family::ChildTrait" {
		t.Errorf("SchemaIdentifier(defaulted) = %s", got)
	}
	if got := SchemaIdentifier(child.Schemas[0], ""); got != "ChildTrait" {
		t.Errorf("SchemaIdentifier(no package) = %s", got)
	}
}
