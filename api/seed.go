/*
seed.go - Demo data loader

Loads a small marketplace into the ledger for manual exploration: a rentee
with a listed room and a renter mid-rental, one MoveIn away from paying out.
Idempotent only against an empty ledger; reseeding an existing database
returns the ledger's own conflict errors.
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/openlease/roomrental/ledger"
)

const (
	demoRentee = ledger.Account("0xA1ex00000000000000000000000000000000Rent")
	demoRenter = ledger.Account("0x71m000000000000000000000000000000000Rent")

	weiPerEther = "1000000000000000000"
)

// SeedDemo loads the demo scenario: alex lists "Downtown" at 1 ether per
// month, tim rents it for 10 months. The rental is left unconfirmed so the
// client can drive MoveIn, withdrawal, and the rest of the lifecycle.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	monthPrice, err := ledger.ParseAmount(weiPerEther)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed", err)
		return
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"sign up rentee", func() error { return h.Ledger.SignUp(ctx, demoRentee, "alex", "12345") }},
		{"log in rentee", func() error { return h.Ledger.Login(ctx, demoRentee, "12345") }},
		{"sign up renter", func() error { return h.Ledger.SignUp(ctx, demoRenter, "tim", "6789") }},
		{"log in renter", func() error { return h.Ledger.Login(ctx, demoRenter, "6789") }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			writeError(w, http.StatusConflict, fmt.Sprintf("Failed to %s", step.name), err)
			return
		}
	}

	roomID, err := h.Ledger.AddRoom(ctx, demoRentee, "Downtown", "Nice view", monthPrice)
	if err != nil {
		writeError(w, http.StatusConflict, "Failed to list demo room", err)
		return
	}
	if err := h.Ledger.RentRoom(ctx, demoRenter, roomID, 10, monthPrice.MulInt(10)); err != nil {
		writeError(w, http.StatusConflict, "Failed to rent demo room", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"rentee":  string(demoRentee),
		"renter":  string(demoRenter),
		"room_id": int64(roomID),
		"state":   string(ledger.StateRented),
	})
}
