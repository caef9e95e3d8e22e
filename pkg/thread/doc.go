/*
Package thread implements conversation thread management and persistence
orchestration.

It serializes turn execution per thread ID: at most one in-flight turn per
thread, enforced with reference-counted in-process locks and, optionally, a
distributed locker for multi-replica deployments. All checkpoint reads and
writes happen under that lock, making per-step read-modify-write atomic.
*/
package thread
