// Seeds a small demo corpus so listings and the statistics dashboard have
// something to show. Safe to re-run: existing titles are skipped.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jovote/models"
	"jovote/pkg/journal"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	svc := journal.NewService(db, nil)
	ctx := context.Background()
	now := time.Now()

	seeds := []journal.CreateParams{
		{
			Title: "Competency-Based Assessment in Vocational Teacher Education: A Longitudinal Study",
			Abstract: "This study follows three cohorts of vocational teacher trainees through a " +
				"competency-based assessment programme, comparing workshop performance, classroom " +
				"delivery and employer feedback against a control group assessed by written " +
				"examination alone. The competency-assessed cohorts showed consistently stronger " +
				"practical outcomes and higher retention in the teaching profession.",
			Authors:         []string{"Dr. Amina Hassan", "Prof. John Okafor", "Dr. Sarah Mwangi"},
			Keywords:        []string{"competency-based assessment", "vocational education", "teacher training"},
			Status:          models.StatusPublished,
			SubmittedBy:     "Dr. Amina Hassan",
			SubmissionDate:  now.AddDate(0, 0, -30),
			PageNumbers:     "1-24",
			DownloadCount:   245,
			FileType:        "application/pdf",
			FileSize:        2048576,
			PdfURL:          "https://assets.local/jovote/upload/seed-journal-1.pdf",
			ContentFilePath: "",
		},
		{
			Title: "Workshop Safety Instruction in Technical Colleges: Evidence from a Multi-Site Survey",
			Abstract: "Drawing on surveys of 1,200 students and 85 instructors across twelve technical " +
				"colleges, this paper evaluates how safety instruction is delivered in mechanical and " +
				"electrical workshops. Colleges pairing demonstration-led instruction with periodic " +
				"refresher drills recorded 35% fewer reportable incidents than those relying on " +
				"induction briefings alone.",
			Authors:        []string{"Dr. Grace Wanjiku", "Prof. Michael Ssebunya"},
			Keywords:       []string{"workshop safety", "technical colleges", "instructor practice"},
			Status:         models.StatusPublished,
			SubmittedBy:    "Dr. Grace Wanjiku",
			SubmissionDate: now.AddDate(0, 0, -25),
			PageNumbers:    "25-48",
			DownloadCount:  189,
			FileType:       "application/pdf",
			FileSize:       3145728,
			PdfURL:         "https://assets.local/jovote/upload/seed-journal-2.pdf",
		},
		{
			Title: "Industry Attachment Programmes and Teaching Quality in Vocational Institutions",
			Abstract: "An examination of whether periodic industry attachments for serving vocational " +
				"teachers translate into measurable improvements in lesson relevance and student " +
				"employability, based on matched classroom observations before and after attachment " +
				"cycles in eight institutions.",
			Authors:        []string{"Dr. Ibrahim Diallo", "Dr. Fatuma Ali"},
			Keywords:       []string{"industry attachment", "teaching quality", "employability"},
			Status:         models.StatusUnderReview,
			SubmittedBy:    "Dr. Ibrahim Diallo",
			SubmissionDate: now.AddDate(0, 0, -10),
		},
		{
			Title: "Digital Tooling in Carpentry Curricula: Adoption Barriers Among Instructors",
			Abstract: "This submission surveys carpentry instructors on the barriers to adopting CNC " +
				"and CAD tooling in their curricula, finding that access to maintenance support, not " +
				"initial equipment cost, is the dominant factor in sustained adoption.",
			Authors:        []string{"Prof. James Mwenda"},
			Keywords:       []string{"digital tooling", "carpentry", "curriculum"},
			Status:         models.StatusSubmitted,
			SubmittedBy:    "Prof. James Mwenda",
			SubmissionDate: now.AddDate(0, 0, -3),
		},
	}

	created := 0
	for _, p := range seeds {
		var count int64
		db.Model(&models.PublishedJournal{}).Where("title = ?", p.Title).Count(&count)
		if count > 0 {
			continue
		}
		if _, err := svc.Create(ctx, p); err != nil {
			log.Printf("seed failed for %q: %v", p.Title, err)
			continue
		}
		created++
	}
	fmt.Printf("seeded %d journal(s)\n", created)
}
