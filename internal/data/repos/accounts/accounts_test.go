package accounts

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizlab-backend/internal/data/repos/testutil"
	"github.com/yungbote/quizlab-backend/internal/domain"
)

func TestIdentityRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(tx)

	repo := NewIdentityRepo(db, testutil.Logger(t))
	id := uuid.New()

	if err := repo.Upsert(dbc, &domain.Identity{ID: id, IsAnonymous: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, &domain.Identity{ID: id, Email: "a@example.com", Provider: "google"}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	got, err := repo.GetByID(dbc, id)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.IsAnonymous || got.Email != "a@example.com" || got.Provider != "google" {
		t.Fatalf("upsert did not refresh claims: %+v", got)
	}

	old := time.Now().UTC().Add(-48 * time.Hour)
	stale := testutil.SeedIdentity(t, tx, true, old)
	testutil.SeedIdentity(t, tx, true, time.Now().UTC())
	testutil.SeedIdentity(t, tx, false, old)

	rows, err := repo.ListStaleAnonymous(dbc, time.Now().UTC().Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ListStaleAnonymous: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != stale.ID {
		t.Fatalf("ListStaleAnonymous: %+v", rows)
	}

	if err := repo.Delete(dbc, stale.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := repo.GetByID(dbc, stale.ID); got != nil {
		t.Fatalf("expected identity to be deleted")
	}
}

func TestOwnershipRepoReassign(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(tx)

	repo := NewOwnershipRepo(db, testutil.Logger(t))
	guest := uuid.New()
	member := uuid.New()

	group := testutil.SeedGroup(t, tx, guest, "trial")
	testutil.SeedQuiz(t, tx, guest, testutil.PtrUUID(group.ID))
	testutil.SeedQuiz(t, tx, guest, nil)
	testutil.SeedChunk(t, tx, guest, "doc", 0, "text", nil)
	testutil.SeedQuiz(t, tx, member, nil)

	counts, err := repo.CountOwned(dbc, guest)
	if err != nil {
		t.Fatalf("CountOwned: %v", err)
	}
	if counts["quizzes"] != 2 || counts["groups"] != 1 || counts["file_chunks"] != 1 {
		t.Fatalf("CountOwned: %v", counts)
	}

	moved, err := repo.Reassign(dbc, guest, member)
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if moved["quizzes"] != 2 || moved["groups"] != 1 || moved["file_chunks"] != 1 {
		t.Fatalf("Reassign counts: %v", moved)
	}

	again, err := repo.Reassign(dbc, guest, member)
	if err != nil {
		t.Fatalf("Reassign again: %v", err)
	}
	for table, n := range again {
		if n != 0 {
			t.Fatalf("second reassign moved %d rows in %s", n, table)
		}
	}

	after, _ := repo.CountOwned(dbc, member)
	if after["quizzes"] != 3 {
		t.Fatalf("member quizzes: %v", after)
	}

	deleted, err := repo.DeleteOwned(dbc, member)
	if err != nil {
		t.Fatalf("DeleteOwned: %v", err)
	}
	if deleted["quizzes"] != 3 {
		t.Fatalf("DeleteOwned counts: %v", deleted)
	}
	if len(OwnedTableNames()) != 6 {
		t.Fatalf("OwnedTableNames: %v", OwnedTableNames())
	}
}
