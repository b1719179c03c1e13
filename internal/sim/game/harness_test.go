package game

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"crittergrid.gg/internal/protocol"
	"crittergrid.gg/internal/sim/tuning"
)

// scriptOracle records randomness requests instead of fulfilling them; tests
// deliver by hand through applyDeliver.
type scriptOracle struct {
	requests []uint64
	seeds    map[uint64][32]byte
	fail     bool
}

func newScriptOracle() *scriptOracle {
	return &scriptOracle{seeds: map[uint64][32]byte{}}
}

func (o *scriptOracle) Request(ctx context.Context, requestID uint64, seed [32]byte) error {
	if o.fail {
		return errors.New("oracle unavailable")
	}
	o.requests = append(o.requests, requestID)
	o.seeds[requestID] = seed
	return nil
}

func (o *scriptOracle) lastRequest(t *testing.T) uint64 {
	t.Helper()
	if len(o.requests) == 0 {
		t.Fatalf("no randomness request issued")
	}
	return o.requests[len(o.requests)-1]
}

type testBank struct {
	balances  map[string]map[string]uint64
	rates     map[string][2]uint64 // currency -> num/den
	failDebit bool
}

func newTestBank() *testBank {
	return &testBank{balances: map[string]map[string]uint64{}, rates: map[string][2]uint64{}}
}

func (b *testBank) fund(account, currency string, amount uint64) {
	if b.balances[account] == nil {
		b.balances[account] = map[string]uint64{}
	}
	b.balances[account][currency] += amount
}

func (b *testBank) balance(account, currency string) uint64 {
	return b.balances[account][currency]
}

func (b *testBank) Debit(ctx context.Context, account, currency string, amount uint64) error {
	if b.failDebit {
		return errors.New("debit declined")
	}
	if b.balances[account][currency] < amount {
		return errors.New("insufficient funds")
	}
	b.balances[account][currency] -= amount
	return nil
}

func (b *testBank) Credit(ctx context.Context, account, currency string, amount uint64) error {
	b.fund(account, currency, amount)
	return nil
}

func (b *testBank) Convert(amount uint64, currency string) (uint64, error) {
	r, ok := b.rates[currency]
	if !ok {
		return 0, fmt.Errorf("no rate for %s", currency)
	}
	return amount * r[0] / r[1], nil
}

type testCustody struct {
	holders      map[string]string
	failTransfer bool
}

func newTestCustody() *testCustody {
	return &testCustody{holders: map[string]string{}}
}

func (c *testCustody) Holder(prize string) (string, bool) {
	h, ok := c.holders[prize]
	return h, ok
}

func (c *testCustody) Transfer(prize, from, to string) error {
	if c.failTransfer {
		return errors.New("custody unavailable")
	}
	h, ok := c.holders[prize]
	if !ok || h != from {
		return fmt.Errorf("prize %s not held by %s", prize, from)
	}
	c.holders[prize] = to
	return nil
}

type scriptVendor struct {
	orders int
	fail   bool
}

func (v *scriptVendor) Purchase(ctx context.Context, qty int, recipient string) (string, error) {
	if v.fail {
		return "", errors.New("vendor down")
	}
	v.orders++
	return fmt.Sprintf("order-%d", v.orders), nil
}

// eventCapture collects every recorded event in order.
type eventCapture struct {
	events []protocol.Event
}

func (c *eventCapture) Write(v any) error {
	if e, ok := v.(protocol.Event); ok {
		c.events = append(c.events, e)
	}
	return nil
}

func (c *eventCapture) ofType(evType string) []protocol.Event {
	var out []protocol.Event
	for _, e := range c.events {
		if e["type"] == evType {
			out = append(out, e)
		}
	}
	return out
}

// result returns the action result for an instant id, failing if absent.
func (c *eventCapture) result(t *testing.T, ref string) protocol.Event {
	t.Helper()
	for i := len(c.events) - 1; i >= 0; i-- {
		e := c.events[i]
		if e["type"] == protocol.EvActionResult && e["ref"] == ref {
			return e
		}
	}
	t.Fatalf("no action result for %q", ref)
	return nil
}

func (c *eventCapture) mustOK(t *testing.T, ref string) {
	t.Helper()
	e := c.result(t, ref)
	if ok, _ := e["ok"].(bool); !ok {
		t.Fatalf("instant %q failed: code=%v message=%v", ref, e["code"], e["message"])
	}
}

func (c *eventCapture) mustFail(t *testing.T, ref, code string) {
	t.Helper()
	e := c.result(t, ref)
	if ok, _ := e["ok"].(bool); ok {
		t.Fatalf("instant %q unexpectedly succeeded", ref)
	}
	if e["code"] != code {
		t.Fatalf("instant %q code=%v want=%s", ref, e["code"], code)
	}
}

type harness struct {
	g      *Game
	oracle *scriptOracle
	bank   *testBank
	cust   *testCustody
	vendor *scriptVendor
	events *eventCapture
}

const (
	testProviderID = "oracle-1"
	testPlayer     = "p1"
	testAdmin      = "authority"
)

func newHarness(t *testing.T, mut func(*tuning.Tuning)) *harness {
	t.Helper()

	tune := tuning.Defaults()
	tune.Auth.ProviderID = testProviderID
	if mut != nil {
		mut(&tune)
	}

	h := &harness{
		oracle: newScriptOracle(),
		bank:   newTestBank(),
		cust:   newTestCustody(),
		vendor: &scriptVendor{},
		events: &eventCapture{},
	}
	g, err := New(Config{
		Tuning:       tune,
		VaultAccount: "vault",
		AuthorityID:  testAdmin,
		Oracle:       h.oracle,
		Vendor:       h.vendor,
		Settle:       h.bank,
		Custody:      h.cust,
		EventLog:     h.events,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.g = g
	return h
}

func (h *harness) playerAct(ctx context.Context, inst protocol.InstantReq) {
	h.g.applyInstant(ctx, ActionEnvelope{
		SessionID: "sess-player", PlayerID: testPlayer, Role: protocol.RolePlayer,
	}, inst)
}

func (h *harness) adminAct(ctx context.Context, inst protocol.InstantReq) {
	h.g.applyInstant(ctx, ActionEnvelope{
		SessionID: "sess-admin", PlayerID: testAdmin, Role: protocol.RoleAdmin,
	}, inst)
}

func (h *harness) deliver(ctx context.Context, requestID uint64, randomness [64]byte) DeliverResult {
	return h.g.applyDeliver(ctx, DeliverEnvelope{
		Principal:  testProviderID,
		RequestID:  requestID,
		Randomness: randomness,
	})
}

// depositPrize registers a prize to the admin and deposits it into the vault.
func (h *harness) depositPrize(ctx context.Context, t *testing.T, prize string) {
	t.Helper()
	h.cust.holders[prize] = testAdmin
	h.adminAct(ctx, protocol.InstantReq{ID: "dep-" + prize, Type: protocol.InstDepositPrize, PrizeID: prize})
	h.events.mustOK(t, "dep-"+prize)
}

// forceSpawn places a critter and returns its slot.
func (h *harness) forceSpawn(ctx context.Context, t *testing.T, slot, x, y int) {
	t.Helper()
	id := fmt.Sprintf("fs-%d", slot)
	h.adminAct(ctx, protocol.InstantReq{ID: id, Type: protocol.InstForceSpawn, Slot: &slot, X: &x, Y: &y})
	h.events.mustOK(t, id)
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

// randomnessFor builds a 64-byte value whose byte slices decode to the given
// outcomes: roll from bytes 0..8, award index from 8..16, relocation from
// 16..18 and 18..20.
func randomnessFor(roll uint64, award uint64, relocX, relocY uint16) [64]byte {
	var r [64]byte
	putLE64(r[0:8], roll)
	putLE64(r[8:16], award)
	putLE16(r[16:18], relocX)
	putLE16(r[18:20], relocY)
	return r
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
