package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/apperror"
)

func record(id string) domain.TradeRecord {
	return domain.TradeRecord{
		AttemptID:   id,
		Timestamp:   time.Now().UTC(),
		AssetSymbol: "WETH",
		Principal:   decimal.NewFromInt(10),
		Success:     true,
	}
}

func TestAppendAndAll(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, record(fmt.Sprintf("a-%d", i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len(All) = %d, want 5", len(all))
	}
	for i, r := range all {
		if want := fmt.Sprintf("a-%d", i); r.AttemptID != want {
			t.Errorf("All[%d] = %s, want %s (oldest first)", i, r.AttemptID, want)
		}
	}
}

func TestAppendRejectsDuplicateAttempt(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Append(ctx, record("a-1")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	err := store.Append(ctx, record("a-1"))
	if got := apperror.GetCode(err); got != apperror.CodeLedgerStoreError {
		t.Errorf("code = %s, want %s", got, apperror.CodeLedgerStoreError)
	}

	all, _ := store.All(ctx)
	if len(all) != 1 {
		t.Errorf("len(All) = %d after rejected duplicate, want 1", len(all))
	}
}

func TestRecentReverseChronological(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, record(fmt.Sprintf("a-%d", i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []string{"a-4", "a-3", "a-2"}
	if len(recent) != len(want) {
		t.Fatalf("len(Recent) = %d, want %d", len(recent), len(want))
	}
	for i, r := range recent {
		if r.AttemptID != want[i] {
			t.Errorf("Recent[%d] = %s, want %s", i, r.AttemptID, want[i])
		}
	}

	// Asking for more than exists returns everything.
	all, err := store.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("len(Recent(100)) = %d, want 5", len(all))
	}

	// A non-positive limit returns nothing, not the whole ledger.
	for _, n := range []int{0, -1} {
		none, err := store.Recent(ctx, n)
		if err != nil {
			t.Fatalf("Recent(%d): %v", n, err)
		}
		if len(none) != 0 {
			t.Errorf("len(Recent(%d)) = %d, want 0", n, len(none))
		}
	}
}
