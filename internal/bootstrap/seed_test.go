package bootstrap

import "testing"

func TestRoleSeedCapabilityMatrix(t *testing.T) {
	byName := make(map[string]roleSeed, len(roleSeeds))
	for _, r := range roleSeeds {
		byName[r.name] = r
	}
	if len(byName) != 3 {
		t.Fatalf("seeded roles = %d, want admin/editor/viewer", len(byName))
	}

	admin := byName["admin"]
	if !admin.create || !admin.read || !admin.update || !admin.del || !admin.manage {
		t.Errorf("admin must hold every capability: %+v", admin)
	}

	editor := byName["editor"]
	if !editor.create || !editor.read || !editor.update || !editor.del {
		t.Errorf("editor must hold all asset capabilities: %+v", editor)
	}
	if editor.manage {
		t.Error("editor must not manage users")
	}

	viewer := byName["viewer"]
	if !viewer.read {
		t.Error("viewer must read assets")
	}
	if viewer.create || viewer.update || viewer.del || viewer.manage {
		t.Errorf("viewer is read-only: %+v", viewer)
	}
}
