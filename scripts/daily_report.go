// Command daily_report builds and sends every company's attendance report
// for one date. A scheduler (cron) runs it shortly after midnight; operators
// can rerun it manually with -date.
//
//	go run ./scripts/daily_report.go [-date YYYY-MM-DD]
package main

import (
	"flag"
	"log"
	"time"

	"github.com/ArslanJaveed/idid/config"
	"github.com/ArslanJaveed/idid/database"
	"github.com/ArslanJaveed/idid/mailer"
	"github.com/ArslanJaveed/idid/models"
	"github.com/ArslanJaveed/idid/report"
)

func main() {
	date := flag.String("date", "", "report date YYYY-MM-DD (default: yesterday)")
	flag.Parse()

	if *date == "" {
		*date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", *date); err != nil {
		log.Fatalf("bad -date value %q: %v", *date, err)
	}

	cfg := config.Load()
	database.Connect(cfg)

	reader := report.NewReader(database.DB)
	var mail mailer.Mailer = mailer.LogMailer{}

	var companies []models.Company
	if err := database.DB.Order("id ASC").Find(&companies).Error; err != nil {
		log.Fatalf("listing companies: %v", err)
	}

	log.Printf("daily attendance report for %s: %d companies", *date, len(companies))
	for _, company := range companies {
		rep, err := reader.BuildDailyReport(company.ID, *date)
		if err != nil {
			log.Printf("company %d (%s): report failed: %v", company.ID, company.CompanyName, err)
			continue
		}
		if len(rep.Rows) == 0 {
			log.Printf("company %d (%s): no employees, skipping", company.ID, company.CompanyName)
			continue
		}
		if err := mail.SendDailyReport(rep.CompanyEmail, rep); err != nil {
			log.Printf("company %d (%s): send failed: %v", company.ID, company.CompanyName, err)
			continue
		}
		log.Printf("company %d (%s): report sent (%d present, %d absent)",
			company.ID, company.CompanyName, rep.TotalPresent, rep.TotalAbsent)
	}
}
