package state_test

import (
	"bidhub/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		stateMachine = state.BidStateMachine
	})

	Describe("BidStateMachine", func() {
		Context("With pending-accepted-rejected states", func() {
			It("should declare states and transitions", func() {
				Expect(stateMachine).NotTo(BeZero())
				Expect(stateMachine.States).Should(Equal([]state.State{
					{Name: "pending", Category: state.InProcess},
					{Name: "accepted", Category: state.Done},
					{Name: "rejected", Category: state.Done},
				}))
				Expect(stateMachine.Transitions).Should(Equal([]state.Transition{state.TransitionAccept, state.TransitionReject}))
			})
		})
	})

	Describe("AvailableTransitions", func() {
		It("should only leave pending", func() {
			Ω(stateMachine.AvailableTransitions("pending", "")).Should(Equal([]state.Transition{
				state.TransitionAccept, state.TransitionReject,
			}))
			Ω(stateMachine.AvailableTransitions("", "accepted")).Should(Equal([]state.Transition{state.TransitionAccept}))
			Ω(len(stateMachine.AvailableTransitions("accepted", ""))).Should(Equal(0))
			Ω(len(stateMachine.AvailableTransitions("rejected", ""))).Should(Equal(0))
			Ω(len(stateMachine.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
		})
	})

	Describe("Transit", func() {
		It("should resolve allowed transitions", func() {
			t, err := stateMachine.Transit("pending", "accepted")
			Expect(err).To(BeNil())
			Expect(*t).To(Equal(state.TransitionAccept))

			t, err = stateMachine.Transit("pending", "rejected")
			Expect(err).To(BeNil())
			Expect(t.Name).To(Equal("reject"))
		})

		It("should refuse transitions out of terminal states", func() {
			for _, from := range []string{"accepted", "rejected"} {
				for _, to := range []string{"pending", "accepted", "rejected"} {
					_, err := stateMachine.Transit(from, to)
					Expect(err).To(Equal(state.ErrTransitionNotAllowed))
				}
			}
			_, err := stateMachine.Transit("pending", "")
			Expect(err).To(Equal(state.ErrTransitionNotAllowed))
		})
	})

	Describe("Terminal and FindState", func() {
		It("should classify states", func() {
			Expect(stateMachine.Terminal("pending")).To(BeFalse())
			Expect(stateMachine.Terminal("accepted")).To(BeTrue())
			Expect(stateMachine.Terminal("rejected")).To(BeTrue())

			s, found := stateMachine.FindState("accepted")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(state.StateAccepted))
			_, found = stateMachine.FindState("UNKNOWN")
			Expect(found).To(BeFalse())
		})
	})
})
