package rbac_test

import (
	"testing"

	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
	_ "github.com/qrserve/qrserve/testing"
)

func TestCatalogCoversAllScopes(t *testing.T) {
	entries, err := rbac.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(entries) != len(shared.AllScopes()) {
		t.Fatalf("expected %d entries, got %d", len(shared.AllScopes()), len(entries))
	}
	seen := make(map[string]struct{})
	for _, e := range entries {
		if _, dup := seen[e.Key]; dup {
			t.Fatalf("duplicate catalog key %s", e.Key)
		}
		seen[e.Key] = struct{}{}
		if e.Category == "" {
			t.Fatalf("entry %s missing category", e.Key)
		}
	}
}

func TestDefaultTemplatesValidate(t *testing.T) {
	if err := rbac.ValidateTemplates(rbac.DefaultTemplates()); err != nil {
		t.Fatalf("default templates must validate: %v", err)
	}
}

func TestValidateTemplatesRejectsUnknownKey(t *testing.T) {
	templates := map[string][]string{
		"greeter": {"orders:read", "lobby:greet"},
	}
	if err := rbac.ValidateTemplates(templates); err == nil {
		t.Fatalf("expected unknown key to fail validation")
	}
}

func TestKitchenTemplateIsMinimal(t *testing.T) {
	kitchen := rbac.DefaultTemplates()["kitchen"]
	allowed := map[string]struct{}{
		shared.PermOrdersRead:    {},
		shared.PermOrdersKitchen: {},
		shared.PermMenuRead:      {},
	}
	for _, key := range kitchen {
		if _, ok := allowed[key]; !ok {
			t.Fatalf("kitchen template must not carry %s", key)
		}
	}
}

func TestCategoryDerivation(t *testing.T) {
	if got := rbac.Category("orders:kitchen"); got != "orders" {
		t.Fatalf("expected orders, got %q", got)
	}
	if got := rbac.Category("malformed"); got != "malformed" {
		t.Fatalf("expected whole key when no colon present, got %q", got)
	}
}
