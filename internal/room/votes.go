package room

import "encoding/json"

// VoterSet is a set of opaque voter identities with deterministic,
// insertion-ordered iteration. The ordering engine relies on stable
// iteration so tie-breaks never flap between reconciliations.
type VoterSet struct {
	order   []string
	members map[string]struct{}
}

func NewVoterSet() *VoterSet {
	return &VoterSet{members: make(map[string]struct{})}
}

// Add inserts the voter, reporting false if they were already present.
func (s *VoterSet) Add(voter string) bool {
	if s.members == nil {
		s.members = make(map[string]struct{})
	}
	if _, ok := s.members[voter]; ok {
		return false
	}
	s.members[voter] = struct{}{}
	s.order = append(s.order, voter)
	return true
}

// Remove deletes the voter, reporting false if they were already absent.
func (s *VoterSet) Remove(voter string) bool {
	if _, ok := s.members[voter]; !ok {
		return false
	}
	delete(s.members, voter)
	for i, v := range s.order {
		if v == voter {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *VoterSet) Has(voter string) bool {
	_, ok := s.members[voter]
	return ok
}

func (s *VoterSet) Size() int {
	return len(s.order)
}

// Members returns the voters in insertion order. The slice is a copy.
func (s *VoterSet) Members() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *VoterSet) Clear() {
	s.order = nil
	s.members = make(map[string]struct{})
}

// MarshalJSON encodes the set as a plain array so room snapshots stay
// readable and the stored form carries the insertion order.
func (s *VoterSet) MarshalJSON() ([]byte, error) {
	voters := s.order
	if voters == nil {
		voters = []string{}
	}
	return json.Marshal(voters)
}

func (s *VoterSet) UnmarshalJSON(data []byte) error {
	var voters []string
	if err := json.Unmarshal(data, &voters); err != nil {
		return err
	}
	s.Clear()
	for _, v := range voters {
		s.Add(v)
	}
	return nil
}

// majorityReached implements the vote threshold: an action auto-executes
// once a strict majority of the currently joined users is behind it. An
// empty room can never reach a majority. Note this is 2*votes > total, not
// floor division, so a 1-of-2 tie does not fire.
func majorityReached(votes, totalUsers int) bool {
	if totalUsers == 0 {
		return false
	}
	return 2*votes > totalUsers
}
