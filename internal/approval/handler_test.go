package approval_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/approval"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/frahmantamala/workforce-portal/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type call struct {
	id     int64
	action ledger.Action
	actor  auth.Actor
	opts   approval.Options
}

type fakeService struct {
	calls []call
	err   error
}

func (f *fakeService) ApplyTimesheetTransition(ctx context.Context, id int64, action ledger.Action, actor auth.Actor, opts approval.Options) (*approval.TimesheetResult, error) {
	f.calls = append(f.calls, call{id: id, action: action, actor: actor, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &approval.TimesheetResult{
		Status:    ledger.StatusApproved,
		Committed: true,
		Warnings:  []internal.Warning{internal.NewDeliveryWarning(7, errors.New("relay down"))},
	}, nil
}

func (f *fakeService) ApplyExpenseLineTransition(ctx context.Context, lineID int64, action ledger.Action, actor auth.Actor, opts approval.Options) (*approval.ExpenseLineResult, error) {
	f.calls = append(f.calls, call{id: lineID, action: action, actor: actor, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &approval.ExpenseLineResult{LineStatus: ledger.StatusRejected, ReportStatus: ledger.StatusRejected, Committed: true}, nil
}

func (f *fakeService) SubmitExpenseReport(ctx context.Context, reportID int64, actor auth.Actor) (*approval.ExpenseReportResult, error) {
	f.calls = append(f.calls, call{id: reportID, action: ledger.ActionSubmit, actor: actor})
	if f.err != nil {
		return nil, f.err
	}
	return &approval.ExpenseReportResult{ReportStatus: ledger.StatusSubmitted, SubmittedLines: 2, Committed: true}, nil
}

var _ = Describe("Handler", func() {
	var (
		service *fakeService
		router  chi.Router
	)

	request := func(target, body string, actor *auth.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		if actor != nil {
			req = req.WithContext(auth.ContextWithActor(req.Context(), *actor))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	BeforeEach(func() {
		service = &fakeService{}
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := approval.NewHandler(transport.NewBaseHandler(log), service)

		router = chi.NewRouter()
		router.Post("/timesheets/{id}/approve", handler.Timesheet(ledger.ActionApprove))
		router.Post("/timesheets/{id}/save", handler.Timesheet(ledger.ActionSave))
		router.Post("/expense-lines/{id}/reject", handler.ExpenseLine(ledger.ActionReject))
		router.Post("/expense-reports/{id}/submit", handler.SubmitExpenseReport)
	})

	It("returns the committed status with its warnings", func() {
		rec := request("/timesheets/12/approve", "", &manager)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{
			"status": "approved",
			"committed": true,
			"warnings": [{"kind": "DELIVERY_WARNING", "recipient_id": 7, "message": "relay down"}]
		}`))
		Expect(service.calls).To(ConsistOf(call{id: 12, action: ledger.ActionApprove, actor: manager}))
	})

	It("passes the rejection reason through", func() {
		rec := request("/expense-lines/4/reject", `{"rejection_reason":"no receipt"}`, &manager)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(service.calls[0].opts.RejectionReason).To(Equal("no receipt"))
	})

	It("reads hours for a save", func() {
		rec := request("/timesheets/12/save", `{"total_hours":"37.5"}`, &employee)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(service.calls[0].opts.TotalHours).NotTo(BeNil())
		Expect(service.calls[0].opts.TotalHours.String()).To(Equal("37.5"))
	})

	It("submits an expense report", func() {
		rec := request("/expense-reports/5/submit", "", &employee)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"report_status":"submitted","submitted_lines":2,"committed":true,"warnings":null}`))
	})

	It("rejects an unauthenticated call", func() {
		rec := request("/timesheets/12/approve", "", nil)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(service.calls).To(BeEmpty())
	})

	It("rejects a malformed id", func() {
		rec := request("/timesheets/abc/approve", "", &manager)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(service.calls).To(BeEmpty())
	})

	It("rejects a malformed body", func() {
		rec := request("/expense-lines/4/reject", `{"rejection_reason":`, &manager)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeValidationFailed)))
		Expect(service.calls).To(BeEmpty())
	})

	It("maps an illegal transition to 400", func() {
		service.err = internal.NewIllegalTransitionError("draft", "approve")

		rec := request("/timesheets/12/approve", "", &manager)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps a missing reason to 400 with its code", func() {
		service.err = internal.NewValidationFieldError("rejection_reason", "rejection_reason is required", internal.ErrCodeRejectionReasonMissing)

		rec := request("/expense-lines/4/reject", `{"rejection_reason":" "}`, &manager)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps a forbidden role to 403", func() {
		service.err = internal.ErrRoleForbidden

		rec := request("/timesheets/12/approve", "", &employee)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("hides unexpected errors", func() {
		service.err = errors.New("connection reset by peer")

		rec := request("/timesheets/12/approve", "", &manager)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("connection reset"))
	})
})
