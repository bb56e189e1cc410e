package model

import (
	"math"
	"testing"
)

func TestEntityOptionalAccessors(t *testing.T) {
	e := Entity{ID: 1, Tags: TagUnit}
	if _, ok := e.Recipe(); ok {
		t.Error("Recipe() should be absent without TagRecipe")
	}
	if _, ok := e.Amount(); ok {
		t.Error("Amount() should be absent without TagAmount")
	}

	e = e.WithRecipe(42).WithAmount(7)
	if r, ok := e.Recipe(); !ok || r != 42 {
		t.Errorf("Recipe() = %d, %v; want 42, true", r, ok)
	}
	if n, ok := e.Amount(); !ok || n != 7 {
		t.Errorf("Amount() = %d, %v; want 7, true", n, ok)
	}
	if !e.Has(TagUnit) {
		t.Error("WithRecipe/WithAmount must keep existing tags")
	}
}

func TestPositionDist(t *testing.T) {
	a := Position{X: 0, Y: 0}
	b := Position{X: 3, Y: 4}
	if d := a.Dist(b); math.Abs(d-5) > 1e-9 {
		t.Errorf("Dist = %f, want 5", d)
	}
}

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"Prototype.Construction": CategoryConstruction,
		"Prototype.Resource":     CategoryResource,
		"recipe":                 CategoryRecipe,
		"Prototype.Unit":         CategoryOther,
		"":                       CategoryOther,
	}
	for in, want := range tests {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDepositResource(t *testing.T) {
	p := PrototypeInfo{Name: "metal deposit"}
	if r, ok := p.DepositResource(); !ok || r != "metal" {
		t.Errorf("DepositResource() = %q, %v", r, ok)
	}
	if _, ok := (PrototypeInfo{Name: "drill"}).DepositResource(); ok {
		t.Error("drill is not a deposit")
	}
}

func TestRecipeResourceName(t *testing.T) {
	if got := (RecipeInfo{Name: "metal", Outputs: []string{"metal"}}).ResourceName(); got != "metal" {
		t.Errorf("got %q", got)
	}
	if got := (RecipeInfo{Name: "oil"}).ResourceName(); got != "oil" {
		t.Errorf("got %q", got)
	}
}
