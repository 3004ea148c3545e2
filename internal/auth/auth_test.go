package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/transport"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

const secret = "0123456789abcdef0123456789abcdef"

var _ = Describe("TokenService", func() {
	var tokens *auth.TokenService

	BeforeEach(func() {
		tokens = auth.NewTokenService(secret, time.Hour)
	})

	It("round-trips the actor", func() {
		token, err := tokens.Issue(auth.Actor{ID: 3, Role: auth.RoleManager})
		Expect(err).NotTo(HaveOccurred())

		actor, err := tokens.Verify(token)

		Expect(err).NotTo(HaveOccurred())
		Expect(actor).To(Equal(auth.Actor{ID: 3, Role: auth.RoleManager}))
	})

	It("reports an expired token", func() {
		tokens.UseClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
		token, err := tokens.Issue(auth.Actor{ID: 3, Role: auth.RoleManager})
		Expect(err).NotTo(HaveOccurred())
		tokens.UseClock(time.Now)

		_, err = tokens.Verify(token)

		Expect(err).To(MatchError(internal.ErrTokenExpired))
	})

	It("rejects a token signed with another secret", func() {
		other := auth.NewTokenService("ffffffffffffffffffffffffffffffff", time.Hour)
		token, err := other.Issue(auth.Actor{ID: 3, Role: auth.RoleManager})
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.Verify(token)

		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects an unknown role", func() {
		claims := &auth.Claims{
			UserID: 3,
			Role:   "owner",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "workforce-portal",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.Verify(token)

		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects garbage", func() {
		_, err := tokens.Verify("not-a-jwt")

		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})
})

var _ = Describe("Actor", func() {
	It("lets managers and admins approve", func() {
		Expect(auth.Actor{Role: auth.RoleManager}.CanApprove()).To(BeTrue())
		Expect(auth.Actor{Role: auth.RoleAdmin}.CanApprove()).To(BeTrue())
		Expect(auth.Actor{Role: auth.RoleEmployee}.CanApprove()).To(BeFalse())
	})

	It("parses roles case-insensitively", func() {
		role, ok := auth.ParseRole(" Manager ")
		Expect(ok).To(BeTrue())
		Expect(role).To(Equal(auth.RoleManager))

		_, ok = auth.ParseRole("owner")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Handler", func() {
	var (
		tokens  *auth.TokenService
		handler *auth.Handler
	)

	serve := func(h http.Handler, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	var seen *auth.Actor
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFromContext(r.Context())
		if ok {
			seen = &actor
		}
		w.WriteHeader(http.StatusNoContent)
	})

	BeforeEach(func() {
		seen = nil
		tokens = auth.NewTokenService(secret, time.Hour)
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = auth.NewHandler(transport.NewBaseHandler(log), tokens)
	})

	It("puts the actor on the request context", func() {
		token, err := tokens.Issue(auth.Actor{ID: 7, Role: auth.RoleEmployee})
		Expect(err).NotTo(HaveOccurred())

		rec := serve(handler.AuthMiddleware(echo), token)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(seen).To(HaveValue(Equal(auth.Actor{ID: 7, Role: auth.RoleEmployee})))
	})

	It("answers 401 without a token", func() {
		rec := serve(handler.AuthMiddleware(echo), "")

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(seen).To(BeNil())
	})

	It("answers 401 for an invalid token", func() {
		rec := serve(handler.AuthMiddleware(echo), "tampered")

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("answers 403 when the role is not allowed", func() {
		token, err := tokens.Issue(auth.Actor{ID: 7, Role: auth.RoleEmployee})
		Expect(err).NotTo(HaveOccurred())

		rec := serve(handler.AuthMiddleware(handler.RequireRole(auth.RoleManager, auth.RoleAdmin)(echo)), token)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(seen).To(BeNil())
	})

	It("lets an allowed role through", func() {
		token, err := tokens.Issue(auth.Actor{ID: 3, Role: auth.RoleAdmin})
		Expect(err).NotTo(HaveOccurred())

		rec := serve(handler.AuthMiddleware(handler.RequireRole(auth.RoleManager, auth.RoleAdmin)(echo)), token)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})
})
