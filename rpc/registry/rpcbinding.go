// Package registry contains RPC wrappers for Assignment Registry contract.
package registry

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Assignment is a contract-specific registry.Assignment type used by its methods.
type Assignment struct {
	Hash      []byte
	Student   util.Uint160
	CourseID  *big.Int
	Timestamp *big.Int
	Title     string
	Status    bool
}

// AssignmentUpdate is a contract-specific registry.AssignmentUpdate type used by its methods.
type AssignmentUpdate struct {
	Title     string
	Hash      []byte
	Timestamp *big.Int
	Updater   util.Uint160
}

// AssignmentSubmittedEvent represents "AssignmentSubmitted" event emitted by the contract.
type AssignmentSubmittedEvent struct {
	ID       *big.Int
	Hash     []byte
	CourseID *big.Int
	Student  util.Uint160
}

// AssignmentUpdatedEvent represents "AssignmentUpdated" event emitted by the contract.
type AssignmentUpdatedEvent struct {
	ID      *big.Int
	OldHash []byte
	NewHash []byte
}

// AuthoritySetEvent represents "AuthoritySet" event emitted by the contract.
type AuthoritySetEvent struct {
	Principal util.Uint160
}

// SubmissionFeeSetEvent represents "SubmissionFeeSet" event emitted by the contract.
type SubmissionFeeSetEvent struct {
	Amount *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// AssignmentsOf invokes `assignmentsOf` method of contract.
func (c *ContractReader) AssignmentsOf(student util.Uint160) (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "assignmentsOf", student))
}

// AssignmentsOfExpanded is similar to AssignmentsOf (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) AssignmentsOfExpanded(student util.Uint160, _numOfIteratorItems int) ([]*big.Int, error) {
	return itemsToBigInts(unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "assignmentsOf", _numOfIteratorItems, student)))
}

// Authority invokes `authority` method of contract. It returns nil if the
// authority is not set yet.
func (c *ContractReader) Authority() (*util.Uint160, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "authority"))
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	b, err := item.TryBytes()
	if err != nil {
		return nil, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Count invokes `count` method of contract.
func (c *ContractReader) Count() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "count"))
}

// Exists invokes `exists` method of contract.
func (c *ContractReader) Exists(hash []byte) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "exists", hash))
}

// Get invokes `get` method of contract. It returns nil if there is no
// assignment with the given ID.
func (c *ContractReader) Get(id *big.Int) (*Assignment, error) {
	return itemToAssignment(unwrap.Item(c.invoker.Call(c.hash, "get", id)))
}

// IsAuthority invokes `isAuthority` method of contract.
func (c *ContractReader) IsAuthority(principal util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isAuthority", principal))
}

// LastUpdate invokes `lastUpdate` method of contract. It returns nil if the
// assignment has never been updated.
func (c *ContractReader) LastUpdate(id *big.Int) (*AssignmentUpdate, error) {
	return itemToAssignmentUpdate(unwrap.Item(c.invoker.Call(c.hash, "lastUpdate", id)))
}

// ListByCourse invokes `listByCourse` method of contract.
func (c *ContractReader) ListByCourse(courseID *big.Int) ([]*big.Int, error) {
	return itemsToBigInts(unwrap.Array(c.invoker.Call(c.hash, "listByCourse", courseID)))
}

// SubmissionFee invokes `submissionFee` method of contract.
func (c *ContractReader) SubmissionFee() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "submissionFee"))
}

// VerifyOwnership invokes `verifyOwnership` method of contract.
func (c *ContractReader) VerifyOwnership(id *big.Int, student util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "verifyOwnership", id, student))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// SetAuthority creates a transaction invoking `setAuthority` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetAuthority(principal util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setAuthority", principal)
}

// SetAuthorityTransaction creates a transaction invoking `setAuthority` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetAuthorityTransaction(principal util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setAuthority", principal)
}

// SetAuthorityUnsigned creates a transaction invoking `setAuthority` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetAuthorityUnsigned(principal util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setAuthority", nil, principal)
}

// SetSubmissionFee creates a transaction invoking `setSubmissionFee` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetSubmissionFee(amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setSubmissionFee", amount)
}

// SetSubmissionFeeTransaction creates a transaction invoking `setSubmissionFee` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetSubmissionFeeTransaction(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setSubmissionFee", amount)
}

// SetSubmissionFeeUnsigned creates a transaction invoking `setSubmissionFee` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetSubmissionFeeUnsigned(amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setSubmissionFee", nil, amount)
}

// Submit creates a transaction invoking `submit` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Submit(hash []byte, title string, courseID *big.Int, student util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "submit", hash, title, courseID, student)
}

// SubmitTransaction creates a transaction invoking `submit` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SubmitTransaction(hash []byte, title string, courseID *big.Int, student util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "submit", hash, title, courseID, student)
}

// SubmitUnsigned creates a transaction invoking `submit` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SubmitUnsigned(hash []byte, title string, courseID *big.Int, student util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "submit", nil, hash, title, courseID, student)
}

// UpdateAssignment creates a transaction invoking `updateAssignment` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) UpdateAssignment(id *big.Int, newTitle string, newHash []byte) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "updateAssignment", id, newTitle, newHash)
}

// UpdateAssignmentTransaction creates a transaction invoking `updateAssignment` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateAssignmentTransaction(id *big.Int, newTitle string, newHash []byte) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "updateAssignment", id, newTitle, newHash)
}

// UpdateAssignmentUnsigned creates a transaction invoking `updateAssignment` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateAssignmentUnsigned(id *big.Int, newTitle string, newHash []byte) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "updateAssignment", nil, id, newTitle, newHash)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

func itemsToBigInts(items []stackitem.Item, err error) ([]*big.Int, error) {
	if err != nil {
		return nil, err
	}
	res := make([]*big.Int, len(items))
	for i := range items {
		res[i], err = items[i].TryInteger()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return res, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}

func itemToUTF8String(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a UTF-8 string")
	}
	return string(b), nil
}

// itemToAssignment converts stack item into *Assignment. Null item is
// converted into nil.
func itemToAssignment(item stackitem.Item, err error) (*Assignment, error) {
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	var res = new(Assignment)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of Assignment from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Assignment) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 6 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.Hash, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Hash: %w", err)
	}

	index++
	res.Student, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Student: %w", err)
	}

	index++
	res.CourseID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field CourseID: %w", err)
	}

	index++
	res.Timestamp, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Timestamp: %w", err)
	}

	index++
	res.Title, err = itemToUTF8String(arr[index])
	if err != nil {
		return fmt.Errorf("field Title: %w", err)
	}

	index++
	res.Status, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field Status: %w", err)
	}

	return nil
}

// itemToAssignmentUpdate converts stack item into *AssignmentUpdate. Null
// item is converted into nil.
func itemToAssignmentUpdate(item stackitem.Item, err error) (*AssignmentUpdate, error) {
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	var res = new(AssignmentUpdate)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of AssignmentUpdate from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *AssignmentUpdate) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.Title, err = itemToUTF8String(arr[index])
	if err != nil {
		return fmt.Errorf("field Title: %w", err)
	}

	index++
	res.Hash, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Hash: %w", err)
	}

	index++
	res.Timestamp, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Timestamp: %w", err)
	}

	index++
	res.Updater, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Updater: %w", err)
	}

	return nil
}

// AssignmentSubmittedEventsFromApplicationLog retrieves a set of all emitted events
// with "AssignmentSubmitted" name from the provided [result.ApplicationLog].
func AssignmentSubmittedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AssignmentSubmittedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*AssignmentSubmittedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "AssignmentSubmitted" {
				continue
			}
			event := new(AssignmentSubmittedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize AssignmentSubmittedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to AssignmentSubmittedEvent or
// returns an error if it's not possible to do to so.
func (e *AssignmentSubmittedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.ID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	index++
	e.Hash, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Hash: %w", err)
	}

	index++
	e.CourseID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field CourseID: %w", err)
	}

	index++
	e.Student, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field Student: %w", err)
	}

	return nil
}

// AssignmentUpdatedEventsFromApplicationLog retrieves a set of all emitted events
// with "AssignmentUpdated" name from the provided [result.ApplicationLog].
func AssignmentUpdatedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AssignmentUpdatedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*AssignmentUpdatedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "AssignmentUpdated" {
				continue
			}
			event := new(AssignmentUpdatedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize AssignmentUpdatedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to AssignmentUpdatedEvent or
// returns an error if it's not possible to do to so.
func (e *AssignmentUpdatedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.ID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	index++
	e.OldHash, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field OldHash: %w", err)
	}

	index++
	e.NewHash, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field NewHash: %w", err)
	}

	return nil
}

// AuthoritySetEventsFromApplicationLog retrieves a set of all emitted events
// with "AuthoritySet" name from the provided [result.ApplicationLog].
func AuthoritySetEventsFromApplicationLog(log *result.ApplicationLog) ([]*AuthoritySetEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*AuthoritySetEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "AuthoritySet" {
				continue
			}
			event := new(AuthoritySetEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize AuthoritySetEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to AuthoritySetEvent or
// returns an error if it's not possible to do to so.
func (e *AuthoritySetEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 1 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Principal, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Principal: %w", err)
	}

	return nil
}

// SubmissionFeeSetEventsFromApplicationLog retrieves a set of all emitted events
// with "SubmissionFeeSet" name from the provided [result.ApplicationLog].
func SubmissionFeeSetEventsFromApplicationLog(log *result.ApplicationLog) ([]*SubmissionFeeSetEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*SubmissionFeeSetEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "SubmissionFeeSet" {
				continue
			}
			event := new(SubmissionFeeSetEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize SubmissionFeeSetEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to SubmissionFeeSetEvent or
// returns an error if it's not possible to do to so.
func (e *SubmissionFeeSetEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 1 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.Amount, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}
