/*
Package dump provides I/O operations for collected states of the Assignment
Registry contract.

A dump captures the contract state (including storage) at a particular block
height. Dumps are used to inspect and reproduce the registry outside the
network: RegistryState decodes storage items into assignments, course lists
and fee settings and checks the consistency of the indices.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump
