package expense_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/expense"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/frahmantamala/workforce-portal/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type memoryReports struct {
	reports map[int64]*expense.Report
	listErr error
}

func (m *memoryReports) GetReport(ctx context.Context, id int64) (*expense.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, internal.ErrExpenseReportNotFound
	}
	return r, nil
}

func (m *memoryReports) ListReportsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*expense.Report, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*expense.Report
	for _, r := range m.reports {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryReports) GetLine(ctx context.Context, id int64) (*expense.Line, error) {
	return nil, internal.ErrExpenseLineNotFound
}

func (m *memoryReports) ApplyLineTransition(ctx context.Context, lineID int64, fn func(line *expense.Line, report *expense.Report) error) (*expense.Line, *expense.Line, *expense.Report, error) {
	return nil, nil, nil, internal.ErrExpenseLineNotFound
}

func (m *memoryReports) SubmitReport(ctx context.Context, reportID int64, fn func(report *expense.Report) error) (*expense.Report, error) {
	return nil, internal.ErrExpenseReportNotFound
}

func (m *memoryReports) ReconcileReport(ctx context.Context, reportID int64) (ledger.Status, ledger.Status, error) {
	return "", "", internal.ErrExpenseReportNotFound
}

var _ = Describe("Expense report reads", func() {
	var (
		repo   *memoryReports
		router chi.Router
	)

	get := func(target string, actor auth.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req = req.WithContext(auth.ContextWithActor(req.Context(), actor))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		repo = &memoryReports{reports: map[int64]*expense.Report{
			4: {
				ID:      4,
				OwnerID: 7,
				Title:   "Surabaya site visit",
				Status:  ledger.StatusSubmitted,
				Lines: []*expense.Line{
					{ID: 1, ReportID: 4, Amount: decimal.RequireFromString("120.50"), Status: ledger.StatusSubmitted},
					{ID: 2, ReportID: 4, Amount: decimal.RequireFromString("79.5"), Status: ledger.StatusApproved},
				},
			},
		}}
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := expense.NewHandler(transport.NewBaseHandler(log), expense.NewService(repo, log))

		router = chi.NewRouter()
		router.Get("/expense-reports", handler.ListReports)
		router.Get("/expense-reports/{id}", handler.GetReport)
	})

	It("shows a report with its total to the owner", func() {
		rec := get("/expense-reports/4", auth.Actor{ID: 7, Role: auth.RoleEmployee})

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["total"]).To(Equal("200.00"))
		Expect(body["status"]).To(Equal("submitted"))
		Expect(body["lines"]).To(HaveLen(2))
	})

	It("shows a report to an approver", func() {
		rec := get("/expense-reports/4", auth.Actor{ID: 3, Role: auth.RoleManager})

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("hides a report from another employee", func() {
		rec := get("/expense-reports/4", auth.Actor{ID: 9, Role: auth.RoleEmployee})

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring("EXPENSE_REPORT_NOT_FOUND"))
	})

	It("rejects a malformed id", func() {
		rec := get("/expense-reports/abc", auth.Actor{ID: 7, Role: auth.RoleEmployee})

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("lists only the actor's own reports", func() {
		rec := get("/expense-reports?limit=5", auth.Actor{ID: 7, Role: auth.RoleEmployee})

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body struct {
			Reports []expense.Report `json:"reports"`
			Limit   int              `json:"limit"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Reports).To(HaveLen(1))
		Expect(body.Limit).To(Equal(5))

		other := get("/expense-reports", auth.Actor{ID: 3, Role: auth.RoleManager})
		Expect(other.Body.String()).To(ContainSubstring(`"reports":null`))
	})

	It("hides store failures behind a 500", func() {
		repo.listErr = errors.New("connection reset")

		rec := get("/expense-reports", auth.Actor{ID: 7, Role: auth.RoleEmployee})

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("connection reset"))
	})

	It("requires an actor", func() {
		req := httptest.NewRequest(http.MethodGet, "/expense-reports/4", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
