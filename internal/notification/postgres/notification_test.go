package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	notificationDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/notification"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	"github.com/frahmantamala/workforce-portal/internal/notification/postgres"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNotificationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NotificationRepository Suite")
}

var _ = Describe("NotificationRepository", func() {
	var (
		db   *gorm.DB
		repo notification.Repository
		ctx  context.Context
		base time.Time
	)

	newNotification := func(recipient int64, minutes int) *notification.Notification {
		return &notification.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipient,
			Kind:        notification.KindExpenseLineRejected,
			Priority:    notification.PriorityHigh,
			EntityType:  notification.EntityExpenseLine,
			EntityID:    12,
			Metadata:    map[string]string{notification.MetaReason: "no receipt", notification.MetaReportID: "5"},
			CreatedAt:   base.Add(time.Duration(minutes) * time.Minute),
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&notificationDatamodel.Notification{})).To(Succeed())

		repo = postgres.NewNotificationRepository(db)
		ctx = context.Background()
		base = time.Date(2024, 3, 29, 9, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.Close()
	})

	It("stores a notification with its metadata", func() {
		n := newNotification(7, 0)
		Expect(repo.Create(ctx, n)).To(Succeed())

		items, err := repo.ListByRecipient(ctx, 7, false, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(1))
		Expect(items[0].ID).To(Equal(n.ID))
		Expect(items[0].Read).To(BeFalse())
		Expect(items[0].EmailSent).To(BeFalse())
		Expect(items[0].Metadata).To(HaveKeyWithValue(notification.MetaReason, "no receipt"))
	})

	It("lists newest first and filters unread", func() {
		older := newNotification(7, 0)
		newer := newNotification(7, 5)
		foreign := newNotification(8, 10)
		for _, n := range []*notification.Notification{older, newer, foreign} {
			Expect(repo.Create(ctx, n)).To(Succeed())
		}
		Expect(repo.MarkRead(ctx, 7, newer.ID)).To(Succeed())

		all, err := repo.ListByRecipient(ctx, 7, false, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
		Expect(all[0].ID).To(Equal(newer.ID))

		unread, err := repo.ListByRecipient(ctx, 7, true, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(unread).To(HaveLen(1))
		Expect(unread[0].ID).To(Equal(older.ID))

		count, err := repo.CountUnread(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(1)))
	})

	It("flags a sent email", func() {
		n := newNotification(7, 0)
		Expect(repo.Create(ctx, n)).To(Succeed())

		Expect(repo.MarkEmailSent(ctx, n.ID)).To(Succeed())

		items, err := repo.ListByRecipient(ctx, 7, false, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(items[0].EmailSent).To(BeTrue())
	})

	It("only lets the recipient mark or delete a notification", func() {
		n := newNotification(7, 0)
		Expect(repo.Create(ctx, n)).To(Succeed())

		Expect(repo.MarkRead(ctx, 8, n.ID)).To(MatchError(internal.ErrNotificationNotFound))
		Expect(repo.Delete(ctx, 8, n.ID)).To(MatchError(internal.ErrNotificationNotFound))

		Expect(repo.Delete(ctx, 7, n.ID)).To(Succeed())
		Expect(repo.Delete(ctx, 7, n.ID)).To(MatchError(internal.ErrNotificationNotFound))
	})
})
