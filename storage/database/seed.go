package database

import (
	_ "embed"
	"io/ioutil"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/notice"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
)

//go:embed seed.yaml
var defaultSeed []byte

type (
	// Seed is the initial content of a database. Every timestamped record carries an Age,
	// resolved against the opening time by Resolve.
	Seed struct {
		// Password is given to every seeded account.
		Password      string                 `yaml:"password"`
		Faculties     []directory.Faculty    `yaml:"faculties"`
		Departments   []directory.Department `yaml:"departments"`
		Users         []user.User            `yaml:"users"`
		Submissions   []SeedSubmission       `yaml:"submissions"`
		HistoryLogs   []SeedHistoryLog       `yaml:"historyLogs"`
		Tickets       []SeedTicket           `yaml:"tickets"`
		Notifications []SeedNotification     `yaml:"notifications"`
		Announcements []SeedAnnouncement     `yaml:"announcements"`
	}

	SeedSubmission struct {
		submission.Submission `yaml:",inline"`
		Age                   time.Duration `yaml:"age"`
	}

	SeedHistoryLog struct {
		notice.HistoryLog `yaml:",inline"`
		Age               time.Duration `yaml:"age"`
	}

	SeedTicket struct {
		notice.SupportTicket `yaml:",inline"`
		Age                  time.Duration `yaml:"age"`
		UpdatedAge           time.Duration `yaml:"updatedAge"`
	}

	SeedNotification struct {
		notice.Notification `yaml:",inline"`
		Age                 time.Duration `yaml:"age"`
	}

	SeedAnnouncement struct {
		notice.Announcement `yaml:",inline"`
		Age                 time.Duration `yaml:"age"`
	}

	// Records is a Seed with passwords hashed and timestamps set.
	Records struct {
		Faculties     []directory.Faculty
		Departments   []directory.Department
		Users         []user.User
		Submissions   []submission.Submission
		HistoryLogs   []notice.HistoryLog
		Tickets       []notice.SupportTicket
		Notifications []notice.Notification
		Announcements []notice.Announcement
	}
)

// DefaultSeed returns the bundled demo dataset.
func DefaultSeed() (*Seed, error) {
	return parseSeed(defaultSeed)
}

// LoadSeed reads a seed from a YAML file.
func LoadSeed(path string) (*Seed, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading seed file")
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.UnmarshalStrict(data, &seed); err != nil {
		return nil, errors.Wrap(err, "parsing seed")
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	facs := make(map[int]bool, len(s.Faculties))
	for _, fac := range s.Faculties {
		if facs[fac.ID] {
			return errors.Errorf("seed: duplicate faculty id %d", fac.ID)
		}
		facs[fac.ID] = true
	}
	depts := make(map[int]bool, len(s.Departments))
	for _, dept := range s.Departments {
		if depts[dept.ID] {
			return errors.Errorf("seed: duplicate department id %d", dept.ID)
		}
		if !facs[dept.FacultyID] {
			return errors.Errorf("seed: department %d references unknown faculty %d", dept.ID, dept.FacultyID)
		}
		depts[dept.ID] = true
	}
	usernames := make(map[string]bool, len(s.Users))
	for _, usr := range s.Users {
		if !usr.Role.IsValid() {
			return errors.Errorf("seed: user %q has invalid role %q", usr.Username, usr.Role)
		}
		if usernames[usr.Username] {
			return errors.Errorf("seed: duplicate username %q", usr.Username)
		}
		usernames[usr.Username] = true
	}
	subIDs := make(map[int]bool, len(s.Submissions))
	for _, sub := range s.Submissions {
		if sub.ID != 0 {
			if subIDs[sub.ID] {
				return errors.Errorf("seed: duplicate submission id %d", sub.ID)
			}
			subIDs[sub.ID] = true
		}
		if !depts[sub.DepartmentID] {
			return errors.Errorf("seed: submission references unknown department %d", sub.DepartmentID)
		}
		if !sub.Status.IsValid() {
			return errors.Errorf("seed: submission of department %d has invalid status %q", sub.DepartmentID, sub.Status)
		}
	}
	return nil
}

var (
	hashMu sync.Mutex
	hashes = make(map[string][]byte)
)

// passwordHash hashes pwd once per process; seeding many accounts with bcrypt is otherwise slow.
func passwordHash(pwd string) ([]byte, error) {
	hashMu.Lock()
	defer hashMu.Unlock()
	if h, ok := hashes[pwd]; ok {
		return h, nil
	}
	var usr user.User
	if err := usr.SetPassword(pwd); err != nil {
		return nil, err
	}
	hashes[pwd] = usr.PasswordHash
	return usr.PasswordHash, nil
}

// Resolve hashes the seed password and dates records relative to now.
func (s *Seed) Resolve(now time.Time) (*Records, error) {
	recs := &Records{
		Faculties:   append([]directory.Faculty(nil), s.Faculties...),
		Departments: append([]directory.Department(nil), s.Departments...),
	}

	if len(s.Users) > 0 {
		hash, err := passwordHash(s.Password)
		if err != nil {
			return nil, errors.Wrap(err, "hashing seed password")
		}
		for _, usr := range s.Users {
			usr.PasswordHash = hash
			usr.CreatedAt = now
			usr.UpdatedAt = now
			recs.Users = append(recs.Users, usr)
		}
	}

	// entries without an id are numbered after the highest explicit one
	nextID := 1
	for _, ss := range s.Submissions {
		if ss.ID >= nextID {
			nextID = ss.ID + 1
		}
	}
	for _, ss := range s.Submissions {
		sub := ss.Submission
		sub.Data = sub.Data.Clone()
		if sub.ID == 0 {
			sub.ID = nextID
			nextID++
		}
		if sub.LastUpdated.IsZero() {
			sub.LastUpdated = now.Add(-ss.Age)
		}
		recs.Submissions = append(recs.Submissions, sub)
	}
	for _, sh := range s.HistoryLogs {
		h := sh.HistoryLog
		h.Timestamp = now.Add(-sh.Age)
		recs.HistoryLogs = append(recs.HistoryLogs, h)
	}
	for _, st := range s.Tickets {
		t := st.SupportTicket
		t.CreatedAt = now.Add(-st.Age)
		t.UpdatedAt = now.Add(-st.UpdatedAge)
		recs.Tickets = append(recs.Tickets, t)
	}
	for _, sn := range s.Notifications {
		n := sn.Notification
		n.Timestamp = now.Add(-sn.Age)
		recs.Notifications = append(recs.Notifications, n)
	}
	for _, sa := range s.Announcements {
		a := sa.Announcement
		a.Timestamp = now.Add(-sa.Age)
		recs.Announcements = append(recs.Announcements, a)
	}
	return recs, nil
}
