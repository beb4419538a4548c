/*
Package registry implements Assignment Registry contract.

Registry contract records assignments submitted by students. Every assignment
is identified by the hash of its content, so the same content can't be
registered twice. Assignments are grouped by courses, a course accepts at most
100 submissions.

Each submission costs a fee paid in GAS to the authority account by the
transaction sender. The authority can be set only once, the fee can be changed
afterwards. Until the authority is set, submissions are rejected.

A student may replace the title and the content hash of own assignment. The
latest replacement is kept and can be read with LastUpdate method.

# Contract notifications

AssignmentSubmitted notification. This notification is produced when a new
assignment is registered.

	AssignmentSubmitted:
	  - name: id
	    type: Integer
	  - name: hash
	    type: ByteArray
	  - name: courseID
	    type: Integer
	  - name: student
	    type: Hash160

AssignmentUpdated notification. This notification is produced when the student
edits the assignment.

	AssignmentUpdated:
	  - name: id
	    type: Integer
	  - name: oldHash
	    type: ByteArray
	  - name: newHash
	    type: ByteArray

AuthoritySet notification. This notification is produced once, when the fee
authority is set.

	AuthoritySet:
	  - name: principal
	    type: Hash160

SubmissionFeeSet notification. This notification is produced when the
submission fee is changed.

	SubmissionFeeSet:
	  - name: amount
	    type: Integer
*/
package registry

/*
Contract storage model.

Current conventions:
 <id>: little-endian integer ID of the assignment
 <course>: little-endian integer ID of the course
 <hash>: 32-byte content hash of the assignment

# Summary
Key-value storage format:
 - 'Authority' -> interop.Hash160
   account receiving submission fees, absent until set
 - 'Fee' -> int
   current submission fee
 - 'Counter' -> int
   number of submitted assignments, also the next assignment ID
 - 'a'<id> -> std.Serialize(Assignment)
   assignment records
 - 'h'<hash> -> <id>
   index of content hashes, a hash belongs to one assignment at most
 - 'c'<course> -> std.Serialize([]int)
   IDs of the course assignments in submission order
 - 's'<interop.Hash160><id> -> <id>
   IDs of the assignments submitted for the student
 - 'u'<id> -> std.Serialize(AssignmentUpdate)
   latest edit of the assignment
 - 'v'<interop.Hash160> -> []byte{1}
   recognized authorities, set once at deployment with the contract administrator
*/
