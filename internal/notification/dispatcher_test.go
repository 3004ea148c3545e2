package notification_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/metrics"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	"github.com/frahmantamala/workforce-portal/internal/preference"
	"github.com/frahmantamala/workforce-portal/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dispatcher", func() {
	var (
		repo       *fakeRepository
		prefs      *fakePreferences
		directory  *fakeDirectory
		transport  *fakeTransport
		dispatcher *notification.Dispatcher
		ctx        context.Context
		now        time.Time
	)

	approved := func(recipient int64) notification.Intent {
		return notification.Intent{
			RecipientID: recipient,
			Kind:        notification.KindTimesheetApproved,
			Priority:    notification.PriorityMedium,
			EntityType:  notification.EntityTimesheet,
			EntityID:    40,
			Metadata:    map[string]string{notification.MetaLabel: "week ending 2024-03-29"},
		}
	}

	BeforeEach(func() {
		repo = newFakeRepository()
		prefs = &fakePreferences{prefs: map[int64]*preference.Preferences{}}
		directory = &fakeDirectory{users: map[int64]*user.User{
			7: {ID: 7, Email: "dewi@workforce.local", Name: "Dewi"},
			8: {ID: 8, Email: "bayu@workforce.local", Name: "Bayu"},
			9: {ID: 9, Name: "No Mail"},
		}}
		transport = newFakeTransport()
		now = time.Date(2024, 3, 29, 16, 30, 0, 0, time.UTC)

		renderer, err := notification.NewRenderer("https://portal.workforce.local")
		Expect(err).NotTo(HaveOccurred())

		dispatcher = notification.NewDispatcher(
			repo, prefs, directory,
			notification.NewPolicy(&fakeManagers{}, 0, time.UTC),
			renderer, transport, testLogger,
			notification.WithMetrics(metrics.NewRecorder()),
			notification.WithClock(func() time.Time { return now }),
		)
		ctx = context.Background()
	})

	It("creates the in-app record and sends the email", func() {
		warnings := dispatcher.Dispatch(ctx, []notification.Intent{approved(7)})

		Expect(warnings).To(BeEmpty())
		Expect(repo.created).To(HaveLen(1))
		n := repo.created[0]
		Expect(n.ID).NotTo(BeEmpty())
		Expect(n.RecipientID).To(Equal(int64(7)))
		Expect(n.CreatedAt).To(Equal(now))
		Expect(repo.emailed).To(HaveKeyWithValue(n.ID, true))
		Expect(transport.sent).To(HaveLen(1))
		Expect(transport.sent[0].To).To(Equal("dewi@workforce.local"))
		Expect(transport.sent[0].Subject).To(Equal("Timesheet approved"))
	})

	It("reports a failed send as a delivery warning after recording the notification", func() {
		transport.failFor["dewi@workforce.local"] = errors.New("421 try again later")

		warnings := dispatcher.Dispatch(ctx, []notification.Intent{approved(7)})

		Expect(warnings).To(HaveLen(1))
		Expect(warnings[0].Kind).To(Equal(internal.WarningDelivery))
		Expect(warnings[0].RecipientID).To(Equal(int64(7)))
		Expect(warnings[0].Message).To(ContainSubstring("421"))
		Expect(repo.created).To(HaveLen(1))
		Expect(repo.emailed).To(BeEmpty())
	})

	It("turns a panicking transport into a delivery warning", func() {
		transport.panicOn["dewi@workforce.local"] = true

		var warnings []internal.Warning
		Expect(func() { warnings = dispatcher.Dispatch(ctx, []notification.Intent{approved(7)}) }).NotTo(Panic())
		Expect(warnings).To(ConsistOf(HaveField("Kind", internal.WarningDelivery)))
	})

	It("keeps delivering to other recipients after a failure", func() {
		repo.failFor[7] = errBoom
		transport.failFor["bayu@workforce.local"] = errBoom

		warnings := dispatcher.Dispatch(ctx, []notification.Intent{approved(7), approved(8), approved(7)})

		Expect(warnings).To(HaveLen(3))
		Expect(warnings[0].Kind).To(Equal(internal.WarningNotification))
		Expect(warnings[1].Kind).To(Equal(internal.WarningDelivery))
		Expect(repo.created).To(HaveLen(1))
		Expect(repo.created[0].RecipientID).To(Equal(int64(8)))
	})

	It("records in-app only when email is suppressed", func() {
		p := preference.Defaults(7)
		p.Channels.Email = false
		prefs.prefs[7] = p

		warnings := dispatcher.Dispatch(ctx, []notification.Intent{approved(7)})

		Expect(warnings).To(BeEmpty())
		Expect(repo.created).To(HaveLen(1))
		Expect(transport.sent).To(BeEmpty())
	})

	It("creates the in-app record even with the in-app channel and category turned off", func() {
		p := preference.Defaults(7)
		p.Channels.InApp = false
		p.Categories.Timesheets = false
		prefs.prefs[7] = p

		warnings := dispatcher.Dispatch(ctx, []notification.Intent{approved(7)})

		Expect(warnings).To(BeEmpty())
		Expect(repo.created).To(HaveLen(1))
		Expect(repo.created[0].RecipientID).To(Equal(int64(7)))
		Expect(transport.sent).To(BeEmpty())
	})

	It("uses default preferences when they cannot be read", func() {
		prefs.err = errBoom

		warnings := dispatcher.Dispatch(ctx, []notification.Intent{approved(7)})

		Expect(warnings).To(BeEmpty())
		Expect(transport.sent).To(HaveLen(1))
	})

	It("warns when the recipient cannot be emailed", func() {
		warnings := dispatcher.Dispatch(ctx, []notification.Intent{approved(9), approved(404)})

		Expect(warnings).To(HaveLen(2))
		Expect(warnings[0].Kind).To(Equal(internal.WarningNotification))
		Expect(warnings[1].Kind).To(Equal(internal.WarningNotification))
		Expect(repo.created).To(HaveLen(2))
		Expect(transport.sent).To(BeEmpty())
	})

	It("does nothing without intents", func() {
		Expect(dispatcher.Dispatch(ctx, nil)).To(BeEmpty())
		Expect(repo.created).To(BeEmpty())
	})
})

var _ = Describe("Renderer", func() {
	var renderer *notification.Renderer

	BeforeEach(func() {
		var err error
		renderer, err = notification.NewRenderer("https://portal.workforce.local/")
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders the reason and escapes html", func() {
		email, err := renderer.Render(&notification.Notification{
			Kind:       notification.KindTimesheetRejected,
			EntityType: notification.EntityTimesheet,
			EntityID:   40,
			Metadata:   map[string]string{notification.MetaReason: "<b>missing</b> friday", notification.MetaLabel: "week ending 2024-03-29"},
		}, "dewi@workforce.local", "Dewi")

		Expect(err).NotTo(HaveOccurred())
		Expect(email.To).To(Equal("dewi@workforce.local"))
		Expect(email.Subject).To(Equal("Timesheet rejected"))
		Expect(email.HTML).To(ContainSubstring("Hi Dewi,"))
		Expect(email.HTML).To(ContainSubstring("week ending 2024-03-29"))
		Expect(email.HTML).To(ContainSubstring("&lt;b&gt;missing&lt;/b&gt; friday"))
		Expect(email.HTML).To(ContainSubstring(`href="https://portal.workforce.local/timesheets/40"`))
	})

	It("links expense lines to their report", func() {
		link := renderer.Link(&notification.Notification{
			EntityType: notification.EntityExpenseLine,
			EntityID:   12,
			Metadata:   map[string]string{notification.MetaReportID: "5"},
		})

		Expect(link).To(Equal("https://portal.workforce.local/expense-reports/5"))
	})

	It("fails for an unknown kind", func() {
		_, err := renderer.Render(&notification.Notification{Kind: "payroll_closed"}, "a@b.c", "A")

		Expect(err).To(HaveOccurred())
	})
})
