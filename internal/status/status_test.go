package status

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	kdb "github.com/snakayama/kadai/internal/db"
	"github.com/snakayama/kadai/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := kdb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testProject(t *testing.T, db *gorm.DB, key string) *models.Project {
	t.Helper()
	p := models.Project{ID: uuid.NewString(), Name: "Test " + key, Key: key}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return &p
}

func TestResolve_MaterializesDefaults(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	catalog, err := Resolve(db, p.ID)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := []struct {
		key   string
		label string
		color string
		order int
	}{
		{"open", "未対応", "#a3a3a3", 0},
		{"in_progress", "処理中", "#3b82f6", 1},
		{"resolved", "処理済み", "#f59e0b", 2},
		{"closed", "完了", "#22c55e", 3},
	}
	if len(catalog) != len(want) {
		t.Fatalf("catalog size = %d, want %d", len(catalog), len(want))
	}
	for i, w := range want {
		got := catalog[i]
		if got.Key != w.key || got.Label != w.label || got.Color != w.color || got.DisplayOrder != w.order {
			t.Errorf("catalog[%d] = {%s %s %s %d}, want {%s %s %s %d}",
				i, got.Key, got.Label, got.Color, got.DisplayOrder, w.key, w.label, w.color, w.order)
		}
		if got.ID == "" {
			t.Errorf("catalog[%d] has empty ID after materialization", i)
		}
		if got.ProjectID != p.ID {
			t.Errorf("catalog[%d].ProjectID = %s, want %s", i, got.ProjectID, p.ID)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	first, err := Resolve(db, p.ID)
	if err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}
	second, err := Resolve(db, p.ID)
	if err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}

	if len(second) != 4 {
		t.Fatalf("second Resolve() size = %d, want 4", len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("row %d ID changed between calls: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	var count int64
	db.Model(&models.TaskStatus{}).Where("project_id = ?", p.ID).Count(&count)
	if count != 4 {
		t.Errorf("row count = %d, want 4", count)
	}
}

func TestResolve_ConcurrentFirstRead(t *testing.T) {
	// File-backed sqlite so multiple connections actually interleave.
	path := filepath.Join(t.TempDir(), "race.db")
	db, err := gorm.Open(sqlite.Open(kdb.SQLiteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := kdb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	p := testProject(t, db, "RACE")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Resolve(db, p.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Resolve() error: %v", err)
	}

	var count int64
	db.Model(&models.TaskStatus{}).Where("project_id = ?", p.ID).Count(&count)
	if count != 4 {
		t.Errorf("row count after concurrent first reads = %d, want 4", count)
	}
}

func TestResolve_UnknownProject(t *testing.T) {
	db := openTestDB(t)

	for _, id := range []string{uuid.NewString(), ""} {
		if _, err := Resolve(db, id); err == nil {
			t.Errorf("Resolve(%q) succeeded, want error", id)
		}
	}

	var count int64
	db.Model(&models.TaskStatus{}).Count(&count)
	if count != 0 {
		t.Errorf("status rows = %d, want 0 (no catalog for unknown projects)", count)
	}
}

func TestResolve_DoesNotMixProjects(t *testing.T) {
	db := openTestDB(t)
	p1 := testProject(t, db, "ONE")
	p2 := testProject(t, db, "TWO")

	if _, err := Resolve(db, p1.ID); err != nil {
		t.Fatalf("Resolve(p1): %v", err)
	}
	if _, err := Create(db, CreateOpts{ProjectID: p1.ID, Key: "review", Label: "レビュー", Color: "#112233"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	catalog, err := Resolve(db, p2.ID)
	if err != nil {
		t.Fatalf("Resolve(p2): %v", err)
	}
	if len(catalog) != 4 {
		t.Errorf("p2 catalog size = %d, want 4 (p1's custom status must not leak)", len(catalog))
	}
	if IsValidKey(catalog, "review") {
		t.Error("p1's custom key is valid in p2's catalog")
	}
}

func TestIsValidKey(t *testing.T) {
	catalog := []models.TaskStatus{
		{Key: "open"},
		{Key: "in_progress"},
		{Key: "review"},
	}

	tests := []struct {
		key  string
		want bool
	}{
		{"open", true},
		{"in_progress", true},
		{"review", true},
		{"OPEN", false},
		{"closed", false},
		{"", false},
		{"open ", false},
	}
	for _, tt := range tests {
		if got := IsValidKey(catalog, tt.key); got != tt.want {
			t.Errorf("IsValidKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}

	if IsValidKey(nil, "open") {
		t.Error("IsValidKey on empty catalog should be false")
	}
}

func TestIsValidKey_AfterDelete(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	if _, err := Resolve(db, p.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	s, err := Create(db, CreateOpts{ProjectID: p.ID, Key: "review", Label: "レビュー", Color: "#112233"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Delete(db, s.ID, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	catalog, err := Resolve(db, p.ID)
	if err != nil {
		t.Fatalf("Resolve after delete: %v", err)
	}
	if IsValidKey(catalog, "review") {
		t.Error("deleted key still reported valid")
	}
}

func TestCreate_AssignsNextOrder(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	if _, err := Resolve(db, p.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	s, err := Create(db, CreateOpts{ProjectID: p.ID, Key: "review", Label: "レビュー", Color: "#3B82F6"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.DisplayOrder != 4 {
		t.Errorf("DisplayOrder = %d, want 4 (after four defaults)", s.DisplayOrder)
	}

	catalog, err := Resolve(db, p.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !IsValidKey(catalog, "review") {
		t.Error("new key missing from resolved catalog")
	}
}

func TestCreate_EmptyCatalogOrderZero(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	// Create on a never-resolved project must not materialize defaults.
	s, err := Create(db, CreateOpts{ProjectID: p.ID, Key: "triage", Label: "トリアージ", Color: "#112233"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.DisplayOrder != 0 {
		t.Errorf("DisplayOrder = %d, want 0 on empty catalog", s.DisplayOrder)
	}

	var count int64
	db.Model(&models.TaskStatus{}).Where("project_id = ?", p.ID).Count(&count)
	if count != 1 {
		t.Errorf("row count = %d, want 1 (Create must not materialize defaults)", count)
	}
}

func TestCreate_UnknownProject(t *testing.T) {
	db := openTestDB(t)

	_, err := Create(db, CreateOpts{ProjectID: uuid.NewString(), Key: "review", Label: "x", Color: "#112233"})
	if err == nil {
		t.Error("Create for unknown project succeeded, want error")
	}

	var count int64
	db.Model(&models.TaskStatus{}).Count(&count)
	if count != 0 {
		t.Errorf("status rows = %d, want 0", count)
	}
}

func TestCreate_DuplicateKey(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	if _, err := Resolve(db, p.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	_, err := Create(db, CreateOpts{ProjectID: p.ID, Key: "open", Label: "二つ目", Color: "#112233"})
	if err == nil {
		t.Fatal("expected conflict error for duplicate key")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "already exists")
	}

	var count int64
	db.Model(&models.TaskStatus{}).Where("project_id = ?", p.ID).Count(&count)
	if count != 4 {
		t.Errorf("catalog size after failed create = %d, want 4", count)
	}
}

func TestCreate_SameKeyDifferentProjects(t *testing.T) {
	db := openTestDB(t)
	p1 := testProject(t, db, "ONE")
	p2 := testProject(t, db, "TWO")

	for _, p := range []*models.Project{p1, p2} {
		if _, err := Create(db, CreateOpts{ProjectID: p.ID, Key: "review", Label: "レビュー", Color: "#112233"}); err != nil {
			t.Fatalf("Create in project %s: %v", p.Key, err)
		}
	}
}

func TestCreate_Validation(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	longLabel := strings.Repeat("あ", 51)
	longKey := strings.Repeat("a", 51)

	tests := []struct {
		name string
		opts CreateOpts
	}{
		{"uppercase key", CreateOpts{ProjectID: p.ID, Key: "Review", Label: "x", Color: "#112233"}},
		{"key with space", CreateOpts{ProjectID: p.ID, Key: "in review", Label: "x", Color: "#112233"}},
		{"key with dash", CreateOpts{ProjectID: p.ID, Key: "in-review", Label: "x", Color: "#112233"}},
		{"empty key", CreateOpts{ProjectID: p.ID, Key: "", Label: "x", Color: "#112233"}},
		{"key too long", CreateOpts{ProjectID: p.ID, Key: longKey, Label: "x", Color: "#112233"}},
		{"empty label", CreateOpts{ProjectID: p.ID, Key: "review", Label: "", Color: "#112233"}},
		{"whitespace label", CreateOpts{ProjectID: p.ID, Key: "review", Label: "   ", Color: "#112233"}},
		{"label too long", CreateOpts{ProjectID: p.ID, Key: "review", Label: longLabel, Color: "#112233"}},
		{"color without hash", CreateOpts{ProjectID: p.ID, Key: "review", Label: "x", Color: "112233"}},
		{"color too short", CreateOpts{ProjectID: p.ID, Key: "review", Label: "x", Color: "#123"}},
		{"color bad chars", CreateOpts{ProjectID: p.ID, Key: "review", Label: "x", Color: "#11223g"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Create(db, tt.opts); err == nil {
				t.Errorf("Create(%+v) succeeded, want validation error", tt.opts)
			}
		})
	}

	// No row may be written by any failed create.
	var count int64
	db.Model(&models.TaskStatus{}).Where("project_id = ?", p.ID).Count(&count)
	if count != 0 {
		t.Errorf("row count after failed creates = %d, want 0", count)
	}
}

func TestUpdate(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	catalog, err := Resolve(db, p.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	target := catalog[0]

	err = Update(db, UpdateOpts{
		ID:           target.ID,
		ProjectID:    p.ID,
		Label:        "新規",
		Color:        "#FF0000",
		DisplayOrder: 9,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	var got models.TaskStatus
	if err := db.Where("id = ?", target.ID).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Label != "新規" || got.Color != "#FF0000" || got.DisplayOrder != 9 {
		t.Errorf("row = {%s %s %d}, want {新規 #FF0000 9}", got.Label, got.Color, got.DisplayOrder)
	}
	if got.Key != target.Key {
		t.Errorf("key changed from %q to %q; key is immutable", target.Key, got.Key)
	}
}

func TestUpdate_Validation(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")
	catalog, _ := Resolve(db, p.ID)

	tests := []struct {
		name string
		opts UpdateOpts
	}{
		{"empty label", UpdateOpts{ID: catalog[0].ID, ProjectID: p.ID, Label: "", Color: "#112233", DisplayOrder: 0}},
		{"bad color", UpdateOpts{ID: catalog[0].ID, ProjectID: p.ID, Label: "x", Color: "red", DisplayOrder: 0}},
		{"negative order", UpdateOpts{ID: catalog[0].ID, ProjectID: p.ID, Label: "x", Color: "#112233", DisplayOrder: -1}},
		{"unknown id", UpdateOpts{ID: uuid.NewString(), ProjectID: p.ID, Label: "x", Color: "#112233", DisplayOrder: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Update(db, tt.opts); err == nil {
				t.Errorf("Update(%+v) succeeded, want error", tt.opts)
			}
		})
	}
}

func TestDelete_CustomStatus(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	s, err := Create(db, CreateOpts{ProjectID: p.ID, Key: "review", Label: "レビュー", Color: "#112233"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Delete(db, s.ID, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int64
	db.Model(&models.TaskStatus{}).Where("id = ?", s.ID).Count(&count)
	if count != 0 {
		t.Error("row still present after delete")
	}
}

func TestDelete_ReservedKeyRejected(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")
	catalog, _ := Resolve(db, p.ID)

	for _, s := range catalog {
		if err := Delete(db, s.ID, p.ID); err == nil {
			t.Errorf("Delete of default status %q succeeded, want rejection", s.Key)
		}
	}

	var count int64
	db.Model(&models.TaskStatus{}).Where("project_id = ?", p.ID).Count(&count)
	if count != 4 {
		t.Errorf("catalog size = %d, want 4 after rejected deletes", count)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")

	if err := Delete(db, uuid.NewString(), p.ID); err == nil {
		t.Error("Delete of unknown id succeeded, want error")
	}
}

func TestReorder_FullPermutation(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")
	catalog, _ := Resolve(db, p.ID)

	// Reverse the catalog.
	items := make([]OrderItem, len(catalog))
	for i, s := range catalog {
		items[i] = OrderItem{ID: s.ID, DisplayOrder: len(catalog) - 1 - i}
	}
	if err := Reorder(db, p.ID, items); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	got, err := Resolve(db, p.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantKeys := []string{"closed", "resolved", "in_progress", "open"}
	for i, w := range wantKeys {
		if got[i].Key != w {
			t.Errorf("catalog[%d].Key = %q, want %q", i, got[i].Key, w)
		}
		if got[i].DisplayOrder != i {
			t.Errorf("catalog[%d].DisplayOrder = %d, want %d", i, got[i].DisplayOrder, i)
		}
	}
}

func TestReorder_PartialLeavesOthers(t *testing.T) {
	db := openTestDB(t)
	p := testProject(t, db, "TEST")
	catalog, _ := Resolve(db, p.ID)

	// Only move "closed" to the front; the rest keep their ranks.
	if err := Reorder(db, p.ID, []OrderItem{{ID: catalog[3].ID, DisplayOrder: 0}}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	var open models.TaskStatus
	db.Where("id = ?", catalog[0].ID).First(&open)
	if open.DisplayOrder != 0 {
		t.Errorf("unmentioned row order = %d, want 0 (untouched)", open.DisplayOrder)
	}
	var closed models.TaskStatus
	db.Where("id = ?", catalog[3].ID).First(&closed)
	if closed.DisplayOrder != 0 {
		t.Errorf("moved row order = %d, want 0", closed.DisplayOrder)
	}
}

func TestReorder_OtherProjectUntouched(t *testing.T) {
	db := openTestDB(t)
	p1 := testProject(t, db, "ONE")
	p2 := testProject(t, db, "TWO")
	if _, err := Resolve(db, p1.ID); err != nil {
		t.Fatalf("Resolve(p1): %v", err)
	}
	c2, _ := Resolve(db, p2.ID)

	// Reorder p1 using p2's ids: project scoping must drop them.
	items := make([]OrderItem, len(c2))
	for i, s := range c2 {
		items[i] = OrderItem{ID: s.ID, DisplayOrder: len(c2) - 1 - i}
	}
	if err := Reorder(db, p1.ID, items); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	got, _ := Resolve(db, p2.ID)
	for i := range c2 {
		if got[i].Key != c2[i].Key {
			t.Errorf("p2 order changed via p1 reorder: got %q at %d, want %q", got[i].Key, i, c2[i].Key)
		}
	}
}

func TestIsReserved(t *testing.T) {
	for _, key := range []string{"open", "in_progress", "resolved", "closed"} {
		if !IsReserved(key) {
			t.Errorf("IsReserved(%q) = false, want true", key)
		}
	}
	for _, key := range []string{"review", "", "OPEN"} {
		if IsReserved(key) {
			t.Errorf("IsReserved(%q) = true, want false", key)
		}
	}
}

func TestKeySet(t *testing.T) {
	catalog := []models.TaskStatus{{Key: "open"}, {Key: "review"}}
	set := KeySet(catalog)
	if len(set) != 2 || !set["open"] || !set["review"] {
		t.Errorf("KeySet = %v, want {open, review}", set)
	}
}

func TestDefaults_FreshIDs(t *testing.T) {
	a := Defaults("p1")
	b := Defaults("p1")
	for i := range a {
		if a[i].ID == b[i].ID {
			t.Errorf("Defaults reuses ID %s at index %d", a[i].ID, i)
		}
	}
	if fmt.Sprint(a[0].Key) != "open" {
		t.Errorf("Defaults[0].Key = %q, want open", a[0].Key)
	}
}
