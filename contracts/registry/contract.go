package registry

import (
	"github.com/nspcc-dev/assignment-registry/common"
	rcst "github.com/nspcc-dev/assignment-registry/contracts/registry/registryconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/ledger"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// Assignment is a submitted piece of work identified by its content hash.
	Assignment struct {
		Hash      []byte
		Student   interop.Hash160
		CourseID  int
		Timestamp int
		Title     string
		Status    bool
	}

	// AssignmentUpdate describes the latest edit of the assignment. Every
	// edit replaces the previous one.
	AssignmentUpdate struct {
		Title     string
		Hash      []byte
		Timestamp int
		Updater   interop.Hash160
	}
)

// reserved all-zero account, nobody owns its keys.
const nullPrincipal = "\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		admin interop.Hash160
		fee   int
	})

	if len(args.admin) != interop.Hash160Len {
		panic("incorrect length of admin script hash")
	}

	if args.fee < 0 {
		panic(rcst.ErrorNegativeFee)
	}

	storage.Put(ctx, verifiedKey(args.admin), []byte{1})
	storage.Put(ctx, rcst.FeeKey, args.fee)
	storage.Put(ctx, rcst.CounterKey, 0)

	runtime.Log("registry contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("registry contract updated")
}

// SetAuthority sets the account receiving submission fees. The authority
// can be set only once and it can't be the zero account.
//
// This method produces AuthoritySet notification.
func SetAuthority(principal interop.Hash160) bool {
	ctx := storage.GetContext()

	if len(principal) != interop.Hash160Len || principal.Equals(nullPrincipal) {
		panic(rcst.ErrorReservedPrincipal)
	}

	if storage.Get(ctx, rcst.AuthorityKey) != nil {
		panic(rcst.ErrorAuthorityAlreadySet)
	}

	storage.Put(ctx, rcst.AuthorityKey, principal)

	runtime.Log("authority has been set")
	runtime.Notify("AuthoritySet", principal)

	return true
}

// SetSubmissionFee replaces the fee paid by submitters. It fails until the
// authority is set.
//
// This method produces SubmissionFeeSet notification.
func SetSubmissionFee(amount int) bool {
	ctx := storage.GetContext()

	if storage.Get(ctx, rcst.AuthorityKey) == nil {
		panic(rcst.ErrorNotConfigured)
	}

	if amount < 0 {
		panic(rcst.ErrorNegativeFee)
	}

	storage.Put(ctx, rcst.FeeKey, amount)

	runtime.Notify("SubmissionFeeSet", amount)

	return true
}

// IsAuthority checks whether the account is recognized as an authority. The
// set is fixed at deployment and holds the contract administrator only, the
// fee authority doesn't join it.
func IsAuthority(principal interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, verifiedKey(principal)) != nil
}

// Authority returns the account receiving submission fees or nil if it is not
// set yet.
func Authority() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, rcst.AuthorityKey)
	if data == nil {
		return nil
	}

	return data.(interop.Hash160)
}

// SubmissionFee returns the current submission fee.
func SubmissionFee() int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, rcst.FeeKey).(int)
}

// Submit registers new assignment and returns its ID. IDs are assigned
// sequentially starting from 0 and never reused.
//
// Hash must be 32 bytes long and unique among all registered assignments.
// Title must consist of 1 to 100 ASCII characters. A course accepts
// at most 100 submissions. The submission fee is transferred in GAS from
// the transaction sender to the authority, so the authority must be set.
//
// This method produces AssignmentSubmitted notification.
func Submit(hash []byte, title string, courseID int, student interop.Hash160) int {
	ctx := storage.GetContext()

	if len(hash) != rcst.HashLength {
		panic(rcst.ErrorInvalidHash)
	}

	checkTitle(title)

	if storage.Get(ctx, hashKey(hash)) != nil {
		panic(rcst.ErrorDuplicateAssignment)
	}

	cKey := courseKey(courseID)
	submissions := common.GetIntList(ctx, cKey)
	if len(submissions) >= rcst.MaxAssignmentsPerCourse {
		panic(rcst.ErrorMaxAssignmentsExceeded)
	}

	authority := storage.Get(ctx, rcst.AuthorityKey)
	if authority == nil {
		panic(rcst.ErrorNotConfigured)
	}

	if len(student) != interop.Hash160Len {
		panic(rcst.ErrorInvalidStudentID)
	}

	if courseID < 0 {
		panic(rcst.ErrorInvalidCourseID)
	}

	fee := storage.Get(ctx, rcst.FeeKey).(int)
	payer := runtime.GetScriptContainer().Sender

	if !gas.Transfer(payer, authority.(interop.Hash160), fee, nil) {
		panic(rcst.ErrorFeeTransferFailed)
	}

	id := storage.Get(ctx, rcst.CounterKey).(int)

	common.SetSerialized(ctx, assignmentKey(id), Assignment{
		Hash:      hash,
		Student:   student,
		CourseID:  courseID,
		Timestamp: ledger.CurrentIndex(),
		Title:     title,
		Status:    true,
	})
	storage.Put(ctx, hashKey(hash), id)

	// capacity is checked above, the list can't outgrow the limit
	submissions = append(submissions, id)
	common.SetSerialized(ctx, cKey, submissions)

	storage.Put(ctx, append(studentKey(student), convert.ToBytes(id)...), id)
	storage.Put(ctx, rcst.CounterKey, id+1)

	runtime.Log("assignment has been submitted")
	runtime.Notify("AssignmentSubmitted", id, hash, courseID, student)

	return id
}

// UpdateAssignment replaces title and content hash of the assignment. It can
// be invoked only by the student the assignment was submitted for. New hash
// must not belong to another assignment; resubmitting the current hash is
// allowed.
//
// Student, course and ID of the assignment never change. The edit is also
// saved as the latest update of the assignment (see LastUpdate).
//
// This method produces AssignmentUpdated notification.
func UpdateAssignment(id int, newTitle string, newHash []byte) bool {
	ctx := storage.GetContext()

	data := storage.Get(ctx, assignmentKey(id))
	if data == nil {
		panic(rcst.ErrorAssignmentNotFound)
	}

	a := std.Deserialize(data.([]byte)).(Assignment)

	if !runtime.CheckWitness(a.Student) {
		panic(rcst.ErrorNotOwner)
	}

	if len(newHash) != rcst.HashLength {
		panic(rcst.ErrorInvalidHash)
	}

	checkTitle(newTitle)

	holder := storage.Get(ctx, hashKey(newHash))
	if holder != nil && holder.(int) != id {
		panic(rcst.ErrorDuplicateAssignment)
	}

	oldHash := a.Hash

	storage.Delete(ctx, hashKey(oldHash))
	storage.Put(ctx, hashKey(newHash), id)

	a.Hash = newHash
	a.Title = newTitle
	a.Timestamp = ledger.CurrentIndex()
	common.SetSerialized(ctx, assignmentKey(id), a)

	common.SetSerialized(ctx, updateKey(id), AssignmentUpdate{
		Title:     newTitle,
		Hash:      newHash,
		Timestamp: a.Timestamp,
		Updater:   a.Student,
	})

	runtime.Log("assignment has been updated")
	runtime.Notify("AssignmentUpdated", id, oldHash, newHash)

	return true
}

// Get returns the assignment with the specified ID or nil if there is no
// such assignment.
func Get(id int) any {
	ctx := storage.GetReadOnlyContext()
	return common.GetSerialized(ctx, assignmentKey(id))
}

// LastUpdate returns the latest edit of the assignment or nil if the
// assignment has never been updated.
func LastUpdate(id int) any {
	ctx := storage.GetReadOnlyContext()
	return common.GetSerialized(ctx, updateKey(id))
}

// VerifyOwnership checks whether the active assignment with the specified ID
// was submitted for the student. Returns false for missing assignments.
func VerifyOwnership(id int, student interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, assignmentKey(id))
	if data == nil {
		return false
	}

	a := std.Deserialize(data.([]byte)).(Assignment)

	return a.Student.Equals(student) && a.Status
}

// ListByCourse returns IDs of the course assignments in submission order.
func ListByCourse(courseID int) []int {
	ctx := storage.GetReadOnlyContext()
	return common.GetIntList(ctx, courseKey(courseID))
}

// Count returns the number of submitted assignments, which is also the ID
// the next assignment gets.
func Count() int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, rcst.CounterKey).(int)
}

// Exists checks whether some assignment currently has the specified content
// hash.
func Exists(hash []byte) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, hashKey(hash)) != nil
}

// AssignmentsOf iterates over IDs of all assignments submitted for the
// student.
func AssignmentsOf(student interop.Hash160) iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, studentKey(student), storage.ValuesOnly)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// checkTitle panics unless the title is 1 to 100 ASCII characters.
func checkTitle(title string) {
	if len(title) == 0 || len(title) > rcst.MaxTitleLength {
		panic(rcst.ErrorInvalidTitle)
	}
	b := []byte(title)
	for i := 0; i < len(b); i++ {
		if b[i] > 0x7f {
			panic(rcst.ErrorInvalidTitle)
		}
	}
}

func assignmentKey(id int) []byte {
	return append([]byte{rcst.AssignmentPrefix}, convert.ToBytes(id)...)
}

func updateKey(id int) []byte {
	return append([]byte{rcst.UpdatePrefix}, convert.ToBytes(id)...)
}

func hashKey(hash []byte) []byte {
	return append([]byte{rcst.HashPrefix}, hash...)
}

func courseKey(courseID int) []byte {
	return append([]byte{rcst.CoursePrefix}, convert.ToBytes(courseID)...)
}

func studentKey(student interop.Hash160) []byte {
	return append([]byte{rcst.StudentPrefix}, student...)
}

func verifiedKey(principal interop.Hash160) []byte {
	return append([]byte{rcst.VerifiedPrefix}, principal...)
}
