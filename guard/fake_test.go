package guard

import (
	"fmt"

	"github.com/codetesla51/storeguard/store"
)

type setCall struct {
	key   string
	value string
}

// scriptedStore is a MemoryStore whose next Set or Delete calls fail with
// queued errors.
type scriptedStore struct {
	*store.MemoryStore
	setErrs    []error
	deleteErrs map[string]error
	sets       []setCall
}

func newScriptedStore(setErrs ...error) *scriptedStore {
	return &scriptedStore{
		MemoryStore: store.NewMemoryStore(),
		setErrs:     setErrs,
		deleteErrs:  map[string]error{},
	}
}

func (s *scriptedStore) Set(key, value string) error {
	s.sets = append(s.sets, setCall{key: key, value: value})
	if len(s.setErrs) > 0 {
		err := s.setErrs[0]
		s.setErrs = s.setErrs[1:]
		if err != nil {
			return err
		}
	}
	return s.MemoryStore.Set(key, value)
}

func (s *scriptedStore) Delete(key string) error {
	if err, ok := s.deleteErrs[key]; ok {
		return err
	}
	return s.MemoryStore.Delete(key)
}

func quotaErr() error {
	return fmt.Errorf("%w: test", store.ErrQuotaExceeded)
}
