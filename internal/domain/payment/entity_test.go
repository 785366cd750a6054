package payment

import "testing"

func TestCanSettle(t *testing.T) {
	success := Outcome{OrderID: "o", PaymentID: "p", Success: true}
	declined := Outcome{OrderID: "o", PaymentID: "p"}

	cases := []struct {
		name    string
		payment Payment
		outcome Outcome
		want    bool
	}{
		{"pending success", Payment{Status: StatusPending}, success, true},
		{"pending decline", Payment{Status: StatusPending}, declined, true},
		{"expired then confirmed", Payment{Status: StatusFailed, FailureReason: ReasonExpired}, success, true},
		{"expired then declined", Payment{Status: StatusFailed, FailureReason: ReasonExpired}, declined, false},
		{"declined then success", Payment{Status: StatusFailed, FailureReason: ReasonDeclined}, success, false},
		{"already paid", Payment{Status: StatusSuccess}, success, false},
	}
	for _, c := range cases {
		if got := c.payment.CanSettle(c.outcome); got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestOutcomeFailureReason(t *testing.T) {
	if r := (Outcome{Success: true}).FailureReason(); r != "" {
		t.Fatalf("expected no reason on success, got %q", r)
	}
	if r := (Outcome{}).FailureReason(); r != ReasonDeclined {
		t.Fatalf("expected declined, got %q", r)
	}
}
