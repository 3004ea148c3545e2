package internal_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

func validConfig() *internal.Config {
	return &internal.Config{
		Env: "development",
		Server: internal.ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
			Source:          "postgres://localhost/workforce",
		},
		Security: internal.SecurityConfig{
			JWTSecret:           "0123456789abcdef0123456789abcdef",
			AccessTokenDuration: 15 * time.Minute,
		},
		Notification: internal.NotificationConfig{
			TimeZone:    "Asia/Jakarta",
			FromAddress: "no-reply@workforce.local",
			AppBaseURL:  "http://localhost:3000",
		},
		Mailer: internal.MailerConfig{Driver: "log"},
		Observability: internal.ObservabilityConfig{
			Logging: internal.LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("rejects a short jwt secret", func() {
		cfg := validConfig()
		cfg.Security.JWTSecret = "short"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("JWTSecret")))
	})

	It("requires smtp host when the smtp driver is selected", func() {
		cfg := validConfig()
		cfg.Mailer.Driver = "smtp"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("Host")))
	})

	It("rejects an unknown time zone", func() {
		cfg := validConfig()
		cfg.Notification.TimeZone = "Mars/Olympus"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("time_zone")))
	})

	It("rejects more idle than open connections", func() {
		cfg := validConfig()
		cfg.Database.MaxIdleConns = 20

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("defaults the notification location to UTC", func() {
		cfg := internal.NotificationConfig{}
		loc, err := cfg.Location()

		Expect(err).NotTo(HaveOccurred())
		Expect(loc).To(Equal(time.UTC))
	})
})

var _ = Describe("AppError", func() {
	It("matches sentinels by type and code", func() {
		err := internal.NewNotFoundError("timesheet 7 not found", internal.ErrCodeTimesheetNotFound)

		Expect(err).To(MatchError(internal.ErrTimesheetNotFound))
		Expect(internal.IsNotFound(err)).To(BeTrue())
	})

	It("reports forbidden transitions as illegal transitions with 403", func() {
		err := internal.NewForbiddenTransitionError("draft", "submit")

		Expect(internal.IsIllegalTransition(err)).To(BeTrue())
		Expect(err.StatusCode).To(Equal(403))
	})

	It("does not mutate sentinels when attaching a cause", func() {
		wrapped := internal.ErrUserNotFound.WithCause(internal.ErrInvalidToken)

		Expect(wrapped.Cause).NotTo(BeNil())
		Expect(internal.ErrUserNotFound.Cause).To(BeNil())
	})
})
