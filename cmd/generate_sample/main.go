// Command generate_sample writes a sample course import file.
// Usage: go run ./cmd/generate_sample [-out sample.csv] [-rows 8] [-delimiter comma]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/courseimport/internal/importers"
)

type sampleCourse struct {
	shortname string
	fullname  string
	summary   string
	tags      string
	thumbnail string
	category  string
	intro     string
	content   string
}

func main() {
	out := flag.String("out", "./sample_courses.csv", "path of the CSV file to write")
	rows := flag.Int("rows", 8, "number of course rows")
	delimiter := flag.String("delimiter", string(importers.DelimiterComma), "comma, semicolon, tab or colon")
	flag.Parse()

	sep, err := importers.Delimiter(*delimiter).Rune(importers.DelimiterComma)
	if err != nil {
		log.Fatalf("Invalid delimiter: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = sep

	if err := w.Write(importers.RequiredHeaders); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	catalog := sampleCatalog()
	for i := 0; i < *rows; i++ {
		c := catalog[i%len(catalog)]
		suffix := ""
		if i >= len(catalog) {
			suffix = fmt.Sprintf(" %d", i/len(catalog)+1)
		}
		record := []string{
			fmt.Sprintf("EXT-%04d", i+1),
			fmt.Sprintf("%s%d", c.shortname, i+1),
			c.fullname + suffix,
			c.summary,
			c.tags,
			"1",
			c.thumbnail,
			"",
			c.category,
			c.fullname + suffix,
			c.intro,
			c.content,
			"0",
		}
		if err := w.Write(record); err != nil {
			log.Fatalf("Failed to write row %d: %v", i+2, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush %s: %v", *out, err)
	}

	log.Printf("Wrote %d course rows to %s", *rows, *out)
}

func sampleCatalog() []sampleCourse {
	return []sampleCourse{
		{
			shortname: "SAFETY",
			fullname:  "Workplace Safety Essentials",
			summary:   "<p>Hazard awareness and reporting for all staff.</p>",
			tags:      "safety,compliance",
			thumbnail: "https://example.com/thumbnails/safety.png",
			category:  "Compliance",
			intro:     "<p>Complete the module on the provider site.</p>",
			content:   "<p><a href=\"https://training.example.com/safety\">Open the course</a></p>",
		},
		{
			shortname: "PRIVACY",
			fullname:  "Data Privacy Fundamentals",
			summary:   "<p>Handling personal data responsibly.</p>",
			tags:      "privacy,compliance,gdpr",
			category:  "Compliance",
			intro:     "<p>Twenty minute self-paced module.</p>",
			content:   "<p><a href=\"https://training.example.com/privacy\">Open the course</a></p>",
		},
		{
			shortname: "LEAD",
			fullname:  "Leading Remote Teams",
			summary:   "<p>Practical habits for distributed managers.</p>",
			tags:      "leadership,management",
			thumbnail: "https://example.com/thumbnails/leadership.jpg",
			category:  "Leadership",
			intro:     "<p>Video series with reflection exercises.</p>",
			content:   "<p><a href=\"https://training.example.com/remote-lead\">Open the course</a></p>",
		},
		{
			shortname: "FEEDBACK",
			fullname:  "Giving Useful Feedback",
			summary:   "<p>Structure feedback so it lands.</p>",
			tags:      "leadership,communication",
			category:  "Leadership",
			intro:     "<p>Short interactive scenarios.</p>",
			content:   "<p><a href=\"https://training.example.com/feedback\">Open the course</a></p>",
		},
		{
			shortname: "SQL",
			fullname:  "SQL for Analysts",
			summary:   "<p>Querying relational data from first SELECT to window functions.</p>",
			tags:      "data,sql",
			thumbnail: "https://example.com/thumbnails/sql.webp",
			category:  "Technical",
			intro:     "<p>Hands-on exercises in the browser.</p>",
			content:   "<p><a href=\"https://training.example.com/sql\">Open the course</a></p>",
		},
		{
			shortname: "CLOUD",
			fullname:  "Cloud Cost Basics",
			summary:   "<p>Reading a cloud bill and spotting waste.</p>",
			tags:      "cloud,finance",
			category:  "Technical",
			intro:     "<p>Self-paced reading with a short quiz.</p>",
			content:   "<p><a href=\"https://training.example.com/cloud-cost\">Open the course</a></p>",
		},
		{
			shortname: "ACCESS",
			fullname:  "Accessible Documents",
			summary:   "<p>Headings, alt text and contrast in everyday documents.</p>",
			tags:      "accessibility",
			category:  "Communication",
			intro:     "<p>Checklist driven module.</p>",
			content:   "<p><a href=\"https://training.example.com/accessible-docs\">Open the course</a></p>",
		},
		{
			shortname: "WRITE",
			fullname:  "Plain Language Writing",
			summary:   "<p>Write so readers understand on the first pass.</p>",
			tags:      "communication,writing",
			thumbnail: "https://example.com/thumbnails/writing.gif",
			category:  "Communication",
			intro:     "<p>Before and after rewriting exercises.</p>",
			content:   "<p><a href=\"https://training.example.com/plain-language\">Open the course</a></p>",
		},
	}
}
