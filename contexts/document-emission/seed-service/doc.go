// Package seedservice seeds a test environment with one remittance document
// and its content declarations, and mirrors every declaration into the FIFO
// emission queue.
//
// The module keeps domain/application logic decoupled from the record store
// and queue transports through ports and adapter composition.
package seedservice
