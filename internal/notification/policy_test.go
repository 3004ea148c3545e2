package notification_test

import (
	"context"
	"time"

	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	"github.com/frahmantamala/workforce-portal/internal/preference"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Policy", func() {
	var (
		managers *fakeManagers
		policy   *notification.Policy
		ctx      context.Context
	)

	BeforeEach(func() {
		managers = &fakeManagers{managers: map[int64]int64{7: 3}}
		policy = notification.NewPolicy(managers, 1, time.UTC)
		ctx = context.Background()
	})

	Context("Intents", func() {
		It("sends a submitted timesheet to the owner's manager with high priority", func() {
			intents, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityTimesheet,
				EntityID:   40,
				Action:     ledger.ActionSubmit,
				ActorID:    7,
				OwnerID:    7,
				Label:      "week ending 2024-03-29",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(intents).To(HaveLen(1))
			Expect(intents[0].RecipientID).To(Equal(int64(3)))
			Expect(intents[0].Kind).To(Equal(notification.KindTimesheetSubmitted))
			Expect(intents[0].Priority).To(Equal(notification.PriorityHigh))
			Expect(intents[0].Metadata).To(HaveKeyWithValue(notification.MetaLabel, "week ending 2024-03-29"))
		})

		It("falls back to the default recipient without a manager", func() {
			intents, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityTimesheet, EntityID: 41, Action: ledger.ActionSubmit, OwnerID: 99,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(intents[0].RecipientID).To(Equal(int64(1)))
		})

		It("fails when neither a manager nor a default recipient exists", func() {
			policy = notification.NewPolicy(managers, 0, time.UTC)

			_, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityTimesheet, EntityID: 41, Action: ledger.ActionSubmit, OwnerID: 99,
			})

			Expect(err).To(MatchError(notification.ErrNoRecipient))
		})

		It("returns manager lookup failures", func() {
			managers.err = errBoom

			_, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityExpenseReport, EntityID: 5, Action: ledger.ActionSubmit, OwnerID: 7,
			})

			Expect(err).To(MatchError(errBoom))
		})

		It("tells the owner about approval and rejection", func() {
			approved, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityTimesheet, EntityID: 40, Action: ledger.ActionApprove, ActorID: 3, OwnerID: 7,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(approved).To(ConsistOf(HaveField("RecipientID", int64(7))))
			Expect(approved[0].Kind).To(Equal(notification.KindTimesheetApproved))
			Expect(approved[0].Priority).To(Equal(notification.PriorityMedium))

			rejected, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityTimesheet, EntityID: 40, Action: ledger.ActionReject, ActorID: 3, OwnerID: 7,
				RejectionReason: "missing friday",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected[0].Kind).To(Equal(notification.KindTimesheetRejected))
			Expect(rejected[0].Metadata).To(HaveKeyWithValue(notification.MetaReason, "missing friday"))
		})

		It("produces nothing for a saved draft", func() {
			intents, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityTimesheet, EntityID: 40, Action: ledger.ActionSave, OwnerID: 7,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(intents).To(BeEmpty())
		})

		It("carries the rejected line's own reason", func() {
			intents, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityExpenseLine, EntityID: 12, ReportID: 5, Action: ledger.ActionReject,
				OwnerID: 7, RejectionReason: "no receipt",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(intents).To(HaveLen(1))
			Expect(intents[0].Kind).To(Equal(notification.KindExpenseLineRejected))
			Expect(intents[0].Priority).To(Equal(notification.PriorityHigh))
			Expect(intents[0].Metadata).To(HaveKeyWithValue(notification.MetaReason, "no receipt"))
			Expect(intents[0].Metadata).To(HaveKeyWithValue(notification.MetaReportID, "5"))
		})

		It("reports a line approval at report level when the report became approved", func() {
			line, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityExpenseLine, EntityID: 12, ReportID: 5, Action: ledger.ActionApprove, OwnerID: 7,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(line[0].Kind).To(Equal(notification.KindExpenseLineApproved))
			Expect(line[0].EntityType).To(Equal(notification.EntityExpenseLine))

			report, err := policy.Intents(ctx, notification.Transition{
				EntityType: notification.EntityExpenseLine, EntityID: 12, ReportID: 5, Action: ledger.ActionApprove, OwnerID: 7,
				ReportApproved: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(report[0].Kind).To(Equal(notification.KindExpenseReportApproved))
			Expect(report[0].EntityType).To(Equal(notification.EntityExpenseReport))
			Expect(report[0].EntityID).To(Equal(int64(5)))
		})
	})

	Context("Decide", func() {
		jakarta, _ := time.LoadLocation("Asia/Jakarta")
		// 16:30 UTC is 23:30 in Jakarta.
		lateEvening := time.Date(2024, 3, 29, 16, 30, 0, 0, time.UTC)
		intent := notification.Intent{Kind: notification.KindTimesheetApproved, Priority: notification.PriorityMedium}

		quietDaily := func() *preference.Preferences {
			p := preference.Defaults(7)
			p.Frequency = preference.FrequencyDaily
			p.QuietHours = preference.QuietHours{Start: "22:00", End: "07:00", Enabled: true}
			return p
		}

		BeforeEach(func() {
			policy = notification.NewPolicy(managers, 1, jakarta)
		})

		It("sends with default preferences", func() {
			Expect(policy.Decide(intent, preference.Defaults(7), lateEvening)).To(Equal(notification.Decision{Email: true}))
		})

		It("suppresses a disabled category", func() {
			p := preference.Defaults(7)
			p.Categories.Timesheets = false

			Expect(policy.Decide(intent, p, lateEvening).Reason).To(Equal(notification.ReasonCategoryDisabled))

			expenseIntent := notification.Intent{Kind: notification.KindExpenseLineRejected, Priority: notification.PriorityHigh}
			Expect(policy.Decide(expenseIntent, p, lateEvening).Email).To(BeTrue())
		})

		It("suppresses a disabled email channel", func() {
			p := preference.Defaults(7)
			p.Channels.Email = false

			Expect(policy.Decide(intent, p, lateEvening)).To(Equal(notification.Decision{Reason: notification.ReasonEmailDisabled}))
		})

		It("holds non-critical email inside quiet hours of the configured zone", func() {
			Expect(policy.Decide(intent, quietDaily(), lateEvening)).To(Equal(notification.Decision{Reason: notification.ReasonQuietHours}))
		})

		It("sends outside quiet hours", func() {
			noonJakarta := time.Date(2024, 3, 29, 5, 0, 0, 0, time.UTC)

			Expect(policy.Decide(intent, quietDaily(), noonJakarta).Email).To(BeTrue())
		})

		It("never holds critical email", func() {
			critical := intent
			critical.Priority = notification.PriorityCritical

			Expect(policy.Decide(critical, quietDaily(), lateEvening).Email).To(BeTrue())
		})

		It("ignores quiet hours unless the frequency is daily", func() {
			p := quietDaily()
			p.Frequency = preference.FrequencyImmediate

			Expect(policy.Decide(intent, p, lateEvening).Email).To(BeTrue())
		})
	})
})
