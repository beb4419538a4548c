package dump

import (
	"errors"
	"fmt"
	"math/big"

	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
	"github.com/nspcc-dev/assignment-registry/rpc/registry"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// RegistryState is a decoded storage of the registry contract. Fill it with
// the storage items via Add. Writer and Open fill it while saving and reading
// dumps.
type RegistryState struct {
	Authority *util.Uint160
	Fee       *big.Int
	Counter   *big.Int

	Assignments map[int64]*registry.Assignment
	Updates     map[int64]*registry.AssignmentUpdate
	// content hash (as string) -> assignment ID
	Hashes  map[string]int64
	Courses map[int64][]int64
	// student -> assignment IDs
	Students map[util.Uint160][]int64
	// recognized authorities, the administrator set at deployment
	Authorities []util.Uint160
}

// NewRegistryState returns empty RegistryState ready to be filled.
func NewRegistryState() *RegistryState {
	return &RegistryState{
		Assignments: make(map[int64]*registry.Assignment),
		Updates:     make(map[int64]*registry.AssignmentUpdate),
		Hashes:      make(map[string]int64),
		Courses:     make(map[int64][]int64),
		Students:    make(map[util.Uint160][]int64),
	}
}

// Add decodes a single storage item of the registry contract. Add fails on
// keys unknown to the registry and on malformed values.
func (x *RegistryState) Add(key, value []byte) error {
	switch string(key) {
	case rcst.AuthorityKey:
		u, err := util.Uint160DecodeBytesBE(value)
		if err != nil {
			return fmt.Errorf("decode authority: %w", err)
		}
		x.Authority = &u
		return nil
	case rcst.FeeKey:
		x.Fee = bigint.FromBytes(value)
		return nil
	case rcst.CounterKey:
		x.Counter = bigint.FromBytes(value)
		return nil
	}

	if len(key) == 0 {
		return errors.New("empty storage key")
	}

	suffix := key[1:]

	switch key[0] {
	case rcst.AssignmentPrefix:
		var a registry.Assignment
		if err := decodeStruct(value, &a); err != nil {
			return fmt.Errorf("decode assignment %d: %w", idFromBytes(suffix), err)
		}
		x.Assignments[idFromBytes(suffix)] = &a
	case rcst.UpdatePrefix:
		var u registry.AssignmentUpdate
		if err := decodeStruct(value, &u); err != nil {
			return fmt.Errorf("decode update of assignment %d: %w", idFromBytes(suffix), err)
		}
		x.Updates[idFromBytes(suffix)] = &u
	case rcst.HashPrefix:
		if len(suffix) != rcst.HashLength {
			return fmt.Errorf("invalid length of indexed hash %d", len(suffix))
		}
		x.Hashes[string(suffix)] = idFromBytes(value)
	case rcst.CoursePrefix:
		ids, err := decodeIntList(value)
		if err != nil {
			return fmt.Errorf("decode assignments of course %d: %w", idFromBytes(suffix), err)
		}
		x.Courses[idFromBytes(suffix)] = ids
	case rcst.StudentPrefix:
		if len(suffix) < util.Uint160Size {
			return fmt.Errorf("invalid student key length %d", len(key))
		}
		student, err := util.Uint160DecodeBytesBE(suffix[:util.Uint160Size])
		if err != nil {
			return fmt.Errorf("decode student: %w", err)
		}
		x.Students[student] = append(x.Students[student], idFromBytes(value))
	case rcst.VerifiedPrefix:
		u, err := util.Uint160DecodeBytesBE(suffix)
		if err != nil {
			return fmt.Errorf("decode verified authority: %w", err)
		}
		x.Authorities = append(x.Authorities, u)
	default:
		return fmt.Errorf("unknown storage key prefix 0x%x", key[0])
	}

	return nil
}

// Validate checks consistency of the decoded registry storage against the
// assignments: counter, content hash index, course lists and their capacity,
// student index and last updates. It also checks that the administrator is
// recognized and the fee authority isn't the zero account.
func (x *RegistryState) Validate() error {
	if x.Counter == nil {
		return errors.New("missing assignment counter")
	}
	if x.Fee == nil {
		return errors.New("missing submission fee")
	}
	if x.Fee.Sign() < 0 {
		return fmt.Errorf("negative submission fee %s", x.Fee)
	}
	if !x.Counter.IsInt64() || x.Counter.Int64() != int64(len(x.Assignments)) {
		return fmt.Errorf("counter %s mismatches number of assignments %d", x.Counter, len(x.Assignments))
	}
	if len(x.Hashes) != len(x.Assignments) {
		return fmt.Errorf("%d indexed hashes for %d assignments", len(x.Hashes), len(x.Assignments))
	}

	listed := make(map[int64]int64, len(x.Assignments))

	for course, ids := range x.Courses {
		if len(ids) > rcst.MaxAssignmentsPerCourse {
			return fmt.Errorf("course %d holds %d assignments", course, len(ids))
		}
		for _, id := range ids {
			listed[id] = course
		}
	}

	for id, a := range x.Assignments {
		if id < 0 || id >= x.Counter.Int64() {
			return fmt.Errorf("assignment %d is out of counter range", id)
		}

		indexed, ok := x.Hashes[string(a.Hash)]
		if !ok || indexed != id {
			return fmt.Errorf("hash of assignment %d is not indexed", id)
		}

		course, ok := listed[id]
		if !ok || a.CourseID.Cmp(big.NewInt(course)) != 0 {
			return fmt.Errorf("assignment %d is not listed in its course %s", id, a.CourseID)
		}
	}

	for id := range x.Updates {
		if _, ok := x.Assignments[id]; !ok {
			return fmt.Errorf("update of missing assignment %d", id)
		}
	}

	var nStudentIDs int

	for student, ids := range x.Students {
		nStudentIDs += len(ids)
		for _, id := range ids {
			a, ok := x.Assignments[id]
			if !ok {
				return fmt.Errorf("student %s lists missing assignment %d", student.StringLE(), id)
			}
			if !a.Student.Equals(student) {
				return fmt.Errorf("student %s lists assignment %d of %s", student.StringLE(), id, a.Student.StringLE())
			}
		}
	}

	if nStudentIDs != len(x.Assignments) {
		return fmt.Errorf("%d student entries for %d assignments", nStudentIDs, len(x.Assignments))
	}

	if len(x.Authorities) == 0 {
		return errors.New("no recognized authorities")
	}

	if x.Authority != nil && x.Authority.Equals(util.Uint160{}) {
		return errors.New("zero account is set as authority")
	}

	return nil
}

type stackItemDecoder interface {
	FromStackItem(stackitem.Item) error
}

func decodeStruct(b []byte, v stackItemDecoder) error {
	item, err := stackitem.Deserialize(b)
	if err != nil {
		return fmt.Errorf("deserialize stack item: %w", err)
	}
	return v.FromStackItem(item)
}

func decodeIntList(b []byte) ([]int64, error) {
	item, err := stackitem.Deserialize(b)
	if err != nil {
		return nil, fmt.Errorf("deserialize stack item: %w", err)
	}

	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}

	res := make([]int64, len(arr))
	for i := range arr {
		n, err := arr[i].TryInteger()
		if err != nil {
			return nil, fmt.Errorf("element #%d: %w", i, err)
		}
		res[i] = n.Int64()
	}

	return res, nil
}

func idFromBytes(b []byte) int64 {
	return bigint.FromBytes(b).Int64()
}
