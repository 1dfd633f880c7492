package notify_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/toejough/deepmock"
	notify "github.com/toejough/deepmock/UAT/03-testify-backed"
	"github.com/toejough/deepmock/testifyfn"
)

func TestNotify_FallsBackToSMS(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errBounced := errors.New("bounced")

	builder := deepmock.NewWith[notify.Channels](testifyfn.Factory(t)).
		Configure("Mail.Send", "Expect", []any{"ana@example.com", mock.Anything}, errBounced)

	err := notify.Notify(builder.Build(), notify.Contact{Email: "ana@example.com", Phone: "555"}, "hi")
	g.Expect(err).NotTo(HaveOccurred())

	mail, _ := builder.Mock("Mail.Send")
	testifyfn.Of(mail).AssertExpectations(t)

	sms, _ := builder.Mock("SMS.Send")
	testifyfn.Of(sms).AssertCalled(t, testifyfn.Method, "555", "hi")
}

func TestNotify_NoChannel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errDown := errors.New("down")

	builder := deepmock.NewWith[notify.Channels](testifyfn.Factory(t)).
		Configure("Mail.Send", "Return", errDown).
		Configure("SMS.Send", "Return", errDown)

	err := notify.Notify(builder.Build(), notify.Contact{}, "hi")
	g.Expect(err).To(MatchError(notify.ErrNoChannel))

	sms, _ := builder.Mock("SMS.Send")
	testifyfn.Of(sms).AssertNumberOfCalls(t, testifyfn.Method, 1)
}

func TestNotify_MailFirst(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	builder := deepmock.NewWith[notify.Channels](testifyfn.Factory(t))

	g.Expect(notify.Notify(builder.Build(), notify.Contact{Email: "bo@example.com"}, "hi")).To(Succeed())

	_, smsCreated := builder.Mock("SMS.Send")
	g.Expect(smsCreated).To(BeFalse())
}
