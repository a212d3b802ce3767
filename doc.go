// Package core is a tree-organized virtual filesystem (package vfs) over
// an ext2-style on-disk driver (package ext2), plus a three-class
// priority-preemptive thread scheduler and wait-queue wakeup mechanism
// (packages sched, waitqueue) for a small hobby-kernel simulation.
//
// Package blockdev supplies the block-addressed storage abstraction both
// the ext2 driver and the cmd/mkfs and cmd/kernsim command-line tools
// are built on.
package core
