package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "eventd-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestSettingUpsertAndDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.GetSetting(ctx, KeyDataFile); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing setting, got %v", err)
	}
	if err := repo.PutSetting(ctx, KeyDataFile, "/tmp/a.dat"); err != nil {
		t.Fatalf("put setting: %v", err)
	}
	if err := repo.PutSetting(ctx, KeyDataFile, "/tmp/b.dat"); err != nil {
		t.Fatalf("overwrite setting: %v", err)
	}

	got, err := repo.GetSetting(ctx, KeyDataFile)
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if got.Value != "/tmp/b.dat" || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected setting: %#v", got)
	}

	if err := repo.DeleteSetting(ctx, KeyDataFile); err != nil {
		t.Fatalf("delete setting: %v", err)
	}
	if err := repo.DeleteSetting(ctx, KeyDataFile); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeliveryListOrderingAndFilters(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	occurs := parseRFC3339(t, "2026-02-09T09:00:00Z")

	for i, stamp := range []string{"2026-02-09T08:00:00Z", "2026-02-09T08:30:00Z", "2026-02-09T09:00:00Z"} {
		d := NewDelivery("Standup", occurs, 60-30*i, parseRFC3339(t, stamp))
		if d.ID == "" {
			t.Fatal("expected generated delivery id")
		}
		if err := repo.RecordDelivery(ctx, d); err != nil {
			t.Fatalf("record delivery %d: %v", i, err)
		}
	}

	all, err := repo.ListDeliveries(ctx, DeliveryListFilter{})
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	if len(all) != 3 || all[0].OffsetMinutes != 0 || all[2].OffsetMinutes != 60 {
		t.Fatalf("expected newest first, got %#v", all)
	}
	if !all[0].OccursAt.Equal(occurs) {
		t.Fatalf("unexpected occurs_at: %s", all[0].OccursAt)
	}

	since := parseRFC3339(t, "2026-02-09T08:15:00Z")
	recent, err := repo.ListDeliveries(ctx, DeliveryListFilter{Since: &since, Limit: 1})
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 1 || recent[0].OffsetMinutes != 0 {
		t.Fatalf("unexpected recent list: %#v", recent)
	}

	paged, err := repo.ListDeliveries(ctx, DeliveryListFilter{Offset: 2})
	if err != nil {
		t.Fatalf("list with offset: %v", err)
	}
	if len(paged) != 1 || paged[0].OffsetMinutes != 60 {
		t.Fatalf("unexpected paged list: %#v", paged)
	}

	pruned, err := repo.PruneDeliveries(ctx, since)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned delivery, got %d", pruned)
	}
}

func TestDeliveryValidation(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.RecordDelivery(ctx, Delivery{Title: "no id"}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if _, err := repo.GetDelivery(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	bad := NewDelivery("Negative", time.Now(), -5, time.Now())
	if err := repo.RecordDelivery(ctx, bad); err == nil {
		t.Fatal("expected check constraint failure for negative offset")
	}
}
