// Package seed fills an empty database with generated jobs, candidates and
// assessments.
package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/model"
)

var jobTags = []string{"Full-time", "Remote", "Contract", "Engineering", "Design", "Marketing", "Product"}

type Options struct {
	Jobs                   int
	Candidates             int
	Assessments            int
	QuestionsPerAssessment int
	RandSeed               int64
}

func DefaultOptions() Options {
	return Options{
		Jobs:                   25,
		Candidates:             1000,
		Assessments:            5,
		QuestionsPerAssessment: 15,
		RandSeed:               time.Now().UnixNano(),
	}
}

// Ensure seeds the database unless it was already seeded. Either all the
// generated data is stored or none of it.
func Ensure(ctx context.Context, store *database.Store, opts Options) error {
	seeded, _, err := database.GetSetting(ctx, store.DB(), database.SettingSeeded)
	if err != nil {
		return err
	}
	if seeded == "true" {
		log.Info("database already seeded")
		return nil
	}

	bank, err := LoadQuestionBank()
	if err != nil {
		return err
	}

	g := &generator{fake: gofakeit.New(opts.RandSeed), opts: opts, bank: bank, now: time.Now()}
	err = store.InTx(ctx, func(tx *sql.Tx) error {
		if err := database.ClearAll(ctx, tx); err != nil {
			return err
		}
		jobs, err := g.jobs(ctx, tx)
		if err != nil {
			return err
		}
		if err = g.candidates(ctx, tx, jobs); err != nil {
			return err
		}
		if err = g.assessments(ctx, tx, jobs); err != nil {
			return err
		}
		return database.SetSetting(ctx, tx, database.SettingSeeded, "true")
	})
	if err != nil {
		return errors.Wrap(err, "seed database")
	}

	log.Info("database seeding complete")
	return nil
}

type generator struct {
	fake *gofakeit.Faker
	opts Options
	bank []BankQuestion
	now  time.Time
}

func (g *generator) past() time.Time {
	return g.fake.DateRange(g.now.AddDate(-1, 0, 0), g.now)
}

func (g *generator) jobTitle(taken map[string]bool) string {
	for attempt := 0; ; attempt++ {
		title := g.fake.JobDescriptor() + " " + g.fake.JobLevel() + " " + g.fake.JobTitle()
		if attempt >= 10 {
			title += " " + strconv.Itoa(attempt)
		}
		if slug := database.Slugify(title); !taken[slug] {
			taken[slug] = true
			return title
		}
	}
}

func (g *generator) jobs(ctx context.Context, tx *sql.Tx) ([]model.Job, error) {
	taken := map[string]bool{}
	jobs := make([]model.Job, 0, g.opts.Jobs)
	for i := 0; i < g.opts.Jobs; i++ {
		title := g.jobTitle(taken)
		status := model.JobActive
		if g.fake.Bool() {
			status = model.JobArchived
		}
		tags := append([]string{}, jobTags...)
		g.fake.ShuffleStrings(tags)

		job := model.Job{
			Title:       title,
			Slug:        database.Slugify(title),
			Status:      status,
			Tags:        tags[:g.fake.Number(1, 3)],
			Description: g.fake.Paragraph(3, 4, 12, "\n\n"),
			Order:       i + 1,
			CreatedAt:   g.past(),
		}
		id, err := database.InsertJob(ctx, tx, job)
		if err != nil {
			return nil, err
		}
		job.ID = id
		jobs = append(jobs, job)
	}
	log.Debugf("%d jobs seeded", len(jobs))
	return jobs, nil
}

func (g *generator) candidates(ctx context.Context, tx *sql.Tx, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	candidates := make([]model.Candidate, g.opts.Candidates)
	for i := range candidates {
		first, last := g.fake.FirstName(), g.fake.LastName()
		candidates[i] = model.Candidate{
			Name:      first + " " + last,
			Email:     strings.ToLower(first+"."+last) + "@" + g.fake.DomainName(),
			Stage:     model.Stages[g.fake.Number(0, len(model.Stages)-1)],
			JobID:     jobs[g.fake.Number(0, len(jobs)-1)].ID,
			Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%d", g.fake.Number(1, 1_000_000)),
			CreatedAt: g.past(),
		}
	}
	ids, err := database.InsertCandidates(ctx, tx, candidates)
	if err != nil {
		return err
	}

	for _, id := range ids {
		events := []model.TimelineEvent{
			{CandidateID: id, Type: model.EventNote, Content: g.fake.Sentence(8), Author: "HR Team", Timestamp: g.past()},
			{CandidateID: id, Type: model.EventStageChange, Content: "Moved to Screen", Author: "System", Timestamp: g.past()},
		}
		for _, ev := range events {
			if _, err := database.AppendTimelineEvent(ctx, tx, ev); err != nil {
				return err
			}
		}
	}
	log.Debugf("%d candidates seeded", len(ids))
	return nil
}

// assessments builds one assessment for each of the first active jobs,
// drawing a different sample of the question bank every time.
func (g *generator) assessments(ctx context.Context, tx *sql.Tx, jobs []model.Job) error {
	var targets []model.Job
	for _, job := range jobs {
		if job.Status == model.JobActive && len(targets) < g.opts.Assessments {
			targets = append(targets, job)
		}
	}
	if len(targets) < g.opts.Assessments {
		log.Warnf("only %d active jobs, seeding %d assessments", len(targets), len(targets))
	}

	for i, job := range targets {
		pool := append([]BankQuestion{}, g.bank...)
		g.fake.ShuffleAnySlice(pool)
		if len(pool) > g.opts.QuestionsPerAssessment {
			pool = pool[:g.opts.QuestionsPerAssessment]
		}

		verbal := model.Section{ID: fmt.Sprintf("sec_%d_1", i), Title: "Verbal Ability", Questions: []model.Question{}}
		quant := model.Section{ID: fmt.Sprintf("sec_%d_2", i), Title: "Quantitative Aptitude", Questions: []model.Question{}}
		required := 0
		for index, bq := range pool {
			q := bq.Question(fmt.Sprintf("q_%d_%d", i, index))
			if i < 3 && required < 4 && g.fake.Float64() > 0.6 {
				q.Required = true
				required++
			}
			if bq.Category == CategoryMath {
				quant.Questions = append(quant.Questions, q)
			} else {
				verbal.Questions = append(verbal.Questions, q)
			}
		}

		structure := model.Structure{
			Title:    fmt.Sprintf("General Aptitude Assessment %d", i+1),
			Sections: []model.Section{verbal, quant},
		}
		if _, err := database.SaveAssessment(ctx, tx, job.ID, structure); err != nil {
			return err
		}
	}
	log.Debugf("%d assessments seeded", len(targets))
	return nil
}

const (
	CategoryVerbal = "verbal"
	CategoryMath   = "math"
)

// BankQuestion is a question template of the embedded question bank.
type BankQuestion struct {
	Type     model.QuestionType `yaml:"type"`
	Category string             `yaml:"category"`
	Text     string             `yaml:"text"`
	Options  []string           `yaml:"options"`
	Min      *float64           `yaml:"min"`
	Max      *float64           `yaml:"max"`
}

func (bq BankQuestion) Question(id string) model.Question {
	q := model.Question{ID: id, Type: bq.Type, Text: bq.Text}
	if len(bq.Options) > 0 {
		q.Options = append([]string{}, bq.Options...)
	}
	if bq.Min != nil {
		q.Min = model.NewLimit(*bq.Min)
	}
	if bq.Max != nil {
		q.Max = model.NewLimit(*bq.Max)
	}
	return q
}

//go:embed questions.yaml
var questionBank []byte

func LoadQuestionBank() ([]BankQuestion, error) {
	var bank []BankQuestion
	if err := yaml.Unmarshal(questionBank, &bank); err != nil {
		return nil, errors.Wrap(err, "parse question bank")
	}
	for i, bq := range bank {
		if !bq.Type.Valid() {
			return nil, errors.Errorf("question bank entry %d: unknown type %q", i, bq.Type)
		}
	}
	return bank, nil
}
