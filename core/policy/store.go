package policy

import (
	"io"
	"io/ioutil"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
)

// Document is the YAML layout of a policy file. Omitted sections keep their current value.
type Document struct {
	Requirements map[submission.AcademicRank]int `yaml:"requirements,omitempty"`
	Buckets      []Bucket                        `yaml:"buckets,omitempty"`
	Permissions  map[Feature]RolePermission      `yaml:"permissions,omitempty"`
}

// Store holds the live requirement and permission tables. Admins edit them at runtime.
type Store struct {
	mu      sync.RWMutex
	reqs    Requirements
	buckets []Bucket
	perms   Permissions
}

func NewStore() *Store {
	return &Store{
		reqs:    DefaultRequirements(),
		buckets: DefaultBuckets(),
		perms:   DefaultPermissions(),
	}
}

func (s *Store) Requirements() Requirements {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reqs.Clone()
}

// SetRequirements replaces the whole requirement table.
func (s *Store) SetRequirements(reqs Requirements) error {
	if err := reqs.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.reqs = reqs.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Store) Buckets() []Bucket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets := make([]Bucket, len(s.buckets))
	copy(buckets, s.buckets)
	return buckets
}

func (s *Store) Permissions() Permissions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.Clone()
}

// SetPermissions overrides the features listed in perms; other features are unchanged.
func (s *Store) SetPermissions(perms Permissions) error {
	if err := perms.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for f, rp := range perms {
		s.perms[f] = rp
	}
	return nil
}

func (s *Store) Allowed(role user.Role, f Feature) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.Allowed(role, f)
}

// Load applies a YAML policy document. Nothing is applied unless the whole document is valid.
func (s *Store) Load(r io.Reader) error {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading policy")
	}
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return errors.Wrap(err, "decoding policy")
	}

	reqs := Requirements(doc.Requirements)
	perms := Permissions(doc.Permissions)
	if err := reqs.Validate(); err != nil {
		return err
	}
	if err := perms.Validate(); err != nil {
		return err
	}
	if err := validateBuckets(doc.Buckets); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Requirements != nil {
		s.reqs = reqs.Clone()
	}
	if doc.Buckets != nil {
		s.buckets = doc.Buckets
	}
	for f, rp := range perms {
		s.perms[f] = rp
	}
	return nil
}

func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening policy file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()
	return s.Load(f)
}

// Save writes the current tables as a YAML policy document.
func (s *Store) Save(w io.Writer) error {
	s.mu.RLock()
	doc := Document{
		Requirements: s.reqs.Clone(),
		Buckets:      append([]Bucket(nil), s.buckets...),
		Permissions:  s.perms.Clone(),
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding policy")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "writing policy")
}
