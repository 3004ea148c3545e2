package notification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	"github.com/frahmantamala/workforce-portal/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		repo    *fakeRepository
		handler *notification.Handler
		router  chi.Router
	)

	const (
		ownID   = "0b6f8f1e-3f0a-4a59-9d8c-2b1c4f6f7a10"
		otherID = "5f1d2c3b-7e8a-4b6c-8d9e-0a1b2c3d4e5f"
	)

	request := func(method, target string, actor *auth.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		if actor != nil {
			req = req.WithContext(auth.ContextWithActor(req.Context(), *actor))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		repo = newFakeRepository()
		repo.created = []*notification.Notification{
			{ID: ownID, RecipientID: 7, Kind: notification.KindTimesheetApproved},
			{ID: otherID, RecipientID: 8, Kind: notification.KindTimesheetSubmitted},
		}
		handler = notification.NewHandler(transport.NewBaseHandler(testLogger), notification.NewService(repo, testLogger))

		router = chi.NewRouter()
		router.Get("/notifications", handler.List)
		router.Get("/notifications/unread-count", handler.UnreadCount)
		router.Patch("/notifications/{id}/read", handler.MarkRead)
		router.Delete("/notifications/{id}", handler.Delete)
	})

	employee := &auth.Actor{ID: 7, Role: auth.RoleEmployee}

	It("lists only the caller's notifications", func() {
		rec := request(http.MethodGet, "/notifications?unread=true&limit=500", employee)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body struct {
			Notifications []notification.Notification `json:"notifications"`
			Limit         int                         `json:"limit"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Notifications).To(HaveLen(1))
		Expect(body.Notifications[0].ID).To(Equal(ownID))
		Expect(body.Limit).To(Equal(100))
		Expect(repo.lastQuery.unreadOnly).To(BeTrue())
	})

	It("counts unread notifications", func() {
		rec := request(http.MethodGet, "/notifications/unread-count", employee)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"unread": 1}`))
	})

	It("marks the caller's notification as read", func() {
		rec := request(http.MethodPatch, "/notifications/"+ownID+"/read", employee)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(repo.read).To(HaveKey(ownID))
	})

	It("hides other people's notifications", func() {
		rec := request(http.MethodPatch, "/notifications/"+otherID+"/read", employee)
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		rec = request(http.MethodDelete, "/notifications/"+otherID, employee)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(repo.deleted).To(BeEmpty())
	})

	It("rejects a malformed id", func() {
		rec := request(http.MethodDelete, "/notifications/42", employee)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("requires an actor", func() {
		rec := request(http.MethodGet, "/notifications", nil)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("surfaces store failures as 500", func() {
		repo.listErr = context.DeadlineExceeded

		rec := request(http.MethodGet, "/notifications", employee)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
