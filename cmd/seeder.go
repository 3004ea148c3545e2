package cmd

import (
	"fmt"
	"log"
	"time"

	expenseDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/expense"
	timesheetDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/workforce-portal/internal/preference"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var clearData bool

type seedUser struct {
	Email   string
	Name    string
	Role    string
	Manager string
}

var seedUsers = []seedUser{
	{Email: "admin@workforce.local", Name: "Padil Admin", Role: "admin"},
	{Email: "rudi@workforce.local", Name: "Rudi Manager", Role: "manager", Manager: "admin@workforce.local"},
	{Email: "dewi@workforce.local", Name: "Dewi", Role: "employee", Manager: "rudi@workforce.local"},
	{Email: "fadhil@workforce.local", Name: "Fadhil", Role: "employee", Manager: "rudi@workforce.local"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, a timesheet and an expense report for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB, cfg.Env)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"transition_audits", "notifications", "notification_preferences", "expense_lines", "expense_reports", "timesheets", "users"} {
				if err := db.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		ids := make(map[string]int64, len(seedUsers))
		for _, u := range seedUsers {
			id, err := ensureUser(db, u)
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, err)
			}
			ids[u.Email] = id
			fmt.Printf("Seeded %s %s (id %d)\n", u.Role, u.Email, id)
		}

		for _, u := range seedUsers {
			if u.Manager == "" {
				continue
			}
			if err := db.Exec("UPDATE users SET manager_id = ? WHERE id = ?", ids[u.Manager], ids[u.Email]).Error; err != nil {
				log.Fatalf("failed to link %s to manager %s: %v", u.Email, u.Manager, err)
			}
		}

		for _, id := range ids {
			row := preference.ToDataModel(preference.Defaults(id))
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
				log.Fatalf("failed to seed preferences of user %d: %v", id, err)
			}
		}

		dewi := ids["dewi@workforce.local"]
		var count int64
		db.Model(&timesheetDatamodel.Timesheet{}).Where("owner_id = ?", dewi).Count(&count)
		if count == 0 {
			periodEnd := lastFriday(time.Now().UTC())
			submittedAt := time.Now().UTC()
			sheets := []*timesheetDatamodel.Timesheet{
				{OwnerID: dewi, PeriodEnd: periodEnd.AddDate(0, 0, -7), TotalHours: decimal.NewFromInt(40), Status: "draft"},
				{OwnerID: dewi, PeriodEnd: periodEnd, TotalHours: decimal.RequireFromString("38.5"), Status: "submitted", SubmittedAt: &submittedAt},
			}
			if err := db.Create(&sheets).Error; err != nil {
				log.Fatalf("failed to seed timesheets: %v", err)
			}
			fmt.Println("Seeded timesheets for", "dewi@workforce.local")
		}

		db.Model(&expenseDatamodel.ExpenseReport{}).Where("owner_id = ?", dewi).Count(&count)
		if count == 0 {
			err := db.Transaction(func(tx *gorm.DB) error {
				report := &expenseDatamodel.ExpenseReport{OwnerID: dewi, Title: "Client visit Surabaya", PeriodLabel: "March", Status: "submitted"}
				if err := tx.Create(report).Error; err != nil {
					return err
				}
				lines := []*expenseDatamodel.ExpenseLine{
					{ReportID: report.ID, Description: "Flight CGK-SUB", Amount: decimal.RequireFromString("1450000.00"), Status: "submitted"},
					{ReportID: report.ID, Description: "Hotel, 2 nights", Amount: decimal.RequireFromString("1800000.00"), Status: "submitted"},
					{ReportID: report.ID, Description: "Taxi", Amount: decimal.RequireFromString("235000.00"), Status: "submitted"},
				}
				return tx.Create(&lines).Error
			})
			if err != nil {
				log.Fatalf("failed to seed expense report: %v", err)
			}
			fmt.Println("Seeded expense report for", "dewi@workforce.local")
		}

		fmt.Println("Seeding finished. Mint a token with: workforce-portal token --user-id <id> --role <role>")
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

func ensureUser(db *gorm.DB, u seedUser) (int64, error) {
	var id int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row().Scan(&id); err == nil {
		return id, nil
	}
	err := db.Raw(
		"INSERT INTO users (email, name, role, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now()) RETURNING id",
		u.Email, u.Name, u.Role,
	).Row().Scan(&id)
	return id, err
}

func lastFriday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for day.Weekday() != time.Friday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
