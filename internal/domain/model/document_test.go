package model

import "testing"

func TestNormalizeBackfillsDefaults(t *testing.T) {
	doc := &Document{}
	doc.Normalize()

	if doc.Profiles == nil || doc.Chats == nil || doc.Messages == nil || doc.Orders == nil {
		t.Fatal("collections not backfilled")
	}
	if doc.Settings.BonusPercentage != DefaultBonusPercentage {
		t.Fatalf("bonus percentage not defaulted: %v", doc.Settings.BonusPercentage)
	}
	if doc.Settings.CryptoWallets == nil {
		t.Fatal("wallet map not backfilled")
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := DefaultDocument()
	doc.Profiles = append(doc.Profiles, Profile{ID: 1, Name: "Alice", Photos: []string{"a.jpg"}})
	doc.Settings.CryptoWallets["trc20"] = "addr"

	clone := doc.Clone()
	clone.Profiles[0].Name = "Mallory"
	clone.Profiles[0].Photos[0] = "b.jpg"
	clone.Settings.CryptoWallets["trc20"] = "evil"

	if doc.Profiles[0].Name != "Alice" {
		t.Fatal("profile slice shared between clones")
	}
	if doc.Profiles[0].Photos[0] != "a.jpg" {
		t.Fatal("photo slice shared between clones")
	}
	if doc.Settings.CryptoWallets["trc20"] != "addr" {
		t.Fatal("wallet map shared between clones")
	}
}

func TestNextIDsSkipGaps(t *testing.T) {
	doc := DefaultDocument()
	doc.Messages = []Message{{ID: 3}, {ID: 7}, {ID: 5}}

	if got := doc.NextMessageID(); got != 8 {
		t.Fatalf("expected next id 8, got %d", got)
	}

	doc.Orders = []Order{{ID: 2}}
	if got := doc.NextOrderID(); got != 3 {
		t.Fatalf("expected next order id 3, got %d", got)
	}

	empty := DefaultDocument()
	if got := empty.NextChatID(); got != 1 {
		t.Fatalf("expected first id 1, got %d", got)
	}
}

func TestLookupsReturnNilForUnknown(t *testing.T) {
	doc := DefaultDocument()
	doc.Profiles = append(doc.Profiles, Profile{ID: 1})

	if doc.ProfileByID(1) == nil {
		t.Fatal("known profile not found")
	}
	if doc.ProfileByID(2) != nil {
		t.Fatal("unknown profile resolved")
	}
	if doc.ChatByID(1) != nil {
		t.Fatal("unknown chat resolved")
	}
}
