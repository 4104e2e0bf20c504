package common_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumenlabs/golight/common"
)

type stubTarget struct {
	closed []*common.Subscription
}

func (t *stubTarget) NewSubscription() (*common.Subscription, error) {
	return common.NewSubscription(t), nil
}

func (t *stubTarget) CloseSubscription(sub *common.Subscription) error {
	t.closed = append(t.closed, sub)
	return nil
}

var _ = Describe(`Subscription`, func() {
	var (
		target *stubTarget
		sub    *common.Subscription
	)

	BeforeEach(func() {
		target = &stubTarget{}
		var err error
		sub, err = target.NewSubscription()
		Expect(err).NotTo(HaveOccurred())
	})

	It(`delivers written events in order`, func() {
		Expect(sub.Write(`first`)).To(Succeed())
		Expect(sub.Write(`second`)).To(Succeed())

		Expect(<-sub.Events()).To(Equal(`first`))
		Expect(<-sub.Events()).To(Equal(`second`))
	})

	It(`has a unique identity`, func() {
		other, err := target.NewSubscription()
		Expect(err).NotTo(HaveOccurred())
		Expect(sub.ID()).NotTo(Equal(other.ID()))
	})

	It(`notifies the target on close`, func() {
		Expect(sub.Close()).To(Succeed())
		Expect(target.closed).To(ConsistOf(sub))
	})

	It(`refuses writes and double closes after closing`, func() {
		Expect(sub.Close()).To(Succeed())
		Expect(sub.Write(`late`)).To(MatchError(common.ErrClosed))
		Expect(sub.Close()).To(MatchError(common.ErrClosed))
	})
})
