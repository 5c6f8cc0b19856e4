package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
	"gopkg.in/yaml.v3"
)

// MemoryBankManager is the long-term store of accumulated teacher
// preference signals, read before a workflow starts and merged into after
// it completes. Counter fields sum across every merge; most-recent
// preference fields are last-write-wins.
type MemoryBankManager interface {
	Load(teacherID string) (*models.TeacherProfile, error)
	Merge(teacherID string, obs models.Observation) error
	Suggestions(teacherID string) (*models.Suggestions, error)
	ProfileCount() (int, error)
	ExportAll(path string) error
}

// unsafePathChars rejects teacher ids that would escape the memory
// directory when used as a file name.
var unsafePathChars = regexp.MustCompile(`[/\\:*?"<>|]`)

type fileMemoryBank struct {
	basePath string

	mu    sync.Mutex           // guards locks map
	locks map[string]*sync.Mutex // per-identity serialization

	now func() time.Time
}

// NewMemoryBankManager creates a MemoryBankManager backed by YAML files
// under memory/ in the given base directory. Writers of the same identity
// are serialized; distinct identities never block each other.
func NewMemoryBankManager(basePath string) MemoryBankManager {
	return &fileMemoryBank{
		basePath: basePath,
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

func (m *fileMemoryBank) memoryDir() string {
	return filepath.Join(m.basePath, "memory")
}

func (m *fileMemoryBank) profilePath(teacherID string) string {
	return filepath.Join(m.memoryDir(), teacherID+".yaml")
}

// lockFor returns the mutex serializing writers of one identity.
func (m *fileMemoryBank) lockFor(teacherID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[teacherID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[teacherID] = l
	}
	return l
}

func validTeacherID(teacherID string) error {
	if teacherID == "" {
		return fmt.Errorf("teacher id must not be empty")
	}
	if unsafePathChars.MatchString(teacherID) {
		return fmt.Errorf("teacher id %q contains path characters", teacherID)
	}
	return nil
}

// Load returns the stored profile for teacherID, or an empty default when
// the identity has never been observed.
func (m *fileMemoryBank) Load(teacherID string) (*models.TeacherProfile, error) {
	if err := validTeacherID(teacherID); err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	data, err := os.ReadFile(m.profilePath(teacherID))
	if err != nil {
		if os.IsNotExist(err) {
			return emptyProfile(teacherID, m.now()), nil
		}
		return nil, fmt.Errorf("loading profile %s: %w", teacherID, err)
	}

	var profile models.TeacherProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", teacherID, err)
	}
	if profile.TeacherID == "" {
		profile.TeacherID = teacherID
	}
	return &profile, nil
}

func emptyProfile(teacherID string, now time.Time) *models.TeacherProfile {
	return &models.TeacherProfile{
		TeacherID:      teacherID,
		SubjectCounts:  make(map[string]int),
		GradeCounts:    make(map[int]int),
		StrategyCounts: make(map[string]int),
		CreatedAt:      now,
	}
}

// Merge folds one observation into a profile: counters are incremented on
// every call, most-recent-preference fields are overwritten. The profile is
// created on first observed identity and persisted synchronously.
func (m *fileMemoryBank) Merge(teacherID string, obs models.Observation) error {
	if err := validTeacherID(teacherID); err != nil {
		return fmt.Errorf("merging observation: %w", err)
	}

	lock := m.lockFor(teacherID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := m.Load(teacherID)
	if err != nil {
		return fmt.Errorf("merging observation: %w", err)
	}
	if profile.SubjectCounts == nil {
		profile.SubjectCounts = make(map[string]int)
	}
	if profile.GradeCounts == nil {
		profile.GradeCounts = make(map[int]int)
	}
	if profile.StrategyCounts == nil {
		profile.StrategyCounts = make(map[string]int)
	}

	profile.PlanCount++
	if obs.Subject != "" {
		profile.SubjectCounts[obs.Subject]++
		profile.LastSubject = obs.Subject
	}
	if obs.Grade != 0 {
		profile.GradeCounts[obs.Grade]++
		profile.LastGrade = obs.Grade
	}
	for _, strategy := range obs.Strategies {
		if strategy != "" {
			profile.StrategyCounts[strategy]++
		}
	}
	if obs.PreferredTier != "" {
		profile.PreferredTier = obs.PreferredTier
	}
	if obs.TeachingStyle != "" {
		profile.TeachingStyle = obs.TeachingStyle
	}
	profile.UpdatedAt = m.now()

	return m.save(profile)
}

func (m *fileMemoryBank) save(profile *models.TeacherProfile) error {
	if err := os.MkdirAll(m.memoryDir(), 0o755); err != nil {
		return fmt.Errorf("saving profile %s: creating directory: %w", profile.TeacherID, err)
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", profile.TeacherID, err)
	}
	if err := os.WriteFile(m.profilePath(profile.TeacherID), data, 0o600); err != nil {
		return fmt.Errorf("saving profile %s: %w", profile.TeacherID, err)
	}
	return nil
}

// Suggestions derives personalized hints from a teacher's accumulated
// profile: the most frequent subjects, grades, and strategies plus the
// last-write-wins preferences.
func (m *fileMemoryBank) Suggestions(teacherID string) (*models.Suggestions, error) {
	profile, err := m.Load(teacherID)
	if err != nil {
		return nil, fmt.Errorf("building suggestions: %w", err)
	}

	return &models.Suggestions{
		TopSubjects:   topStrings(profile.SubjectCounts, 3),
		TopGrades:     topInts(profile.GradeCounts, 3),
		TopStrategies: topStrings(profile.StrategyCounts, 5),
		PreferredTier: profile.PreferredTier,
		TeachingStyle: profile.TeachingStyle,
		PlanCount:     profile.PlanCount,
	}, nil
}

// topStrings returns the n highest-count keys, ties broken alphabetically
// for stable output.
func topStrings(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func topInts(counts map[int]int, n int) []int {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// ProfileCount returns how many teacher profiles are stored on disk.
func (m *fileMemoryBank) ProfileCount() (int, error) {
	entries, err := os.ReadDir(m.memoryDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("counting profiles: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			n++
		}
	}
	return n, nil
}

// ExportAll writes every stored profile into a single YAML file.
func (m *fileMemoryBank) ExportAll(path string) error {
	entries, err := os.ReadDir(m.memoryDir())
	if err != nil {
		if os.IsNotExist(err) {
			entries = nil
		} else {
			return fmt.Errorf("exporting memory bank: %w", err)
		}
	}

	var profiles []models.TeacherProfile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.memoryDir(), e.Name())) //nolint:gosec // G304: reading profiles from the managed memory directory
		if err != nil {
			continue
		}
		var p models.TeacherProfile
		if err := yaml.Unmarshal(data, &p); err != nil {
			continue
		}
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].TeacherID < profiles[j].TeacherID })

	out := struct {
		Profiles []models.TeacherProfile `yaml:"profiles"`
	}{Profiles: profiles}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("exporting memory bank: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("exporting memory bank: %w", err)
	}
	return nil
}
