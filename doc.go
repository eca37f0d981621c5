// Package accounts provides the user-account domain for a multi-tenant
// school platform: a bun-backed user store with soft delete, password
// credential verification, JWT issuance and validation, role-based
// authorization primitives, and transactional CSV batch import.
//
// Identity:
//   - Every account has two ids. The primary uuid keys storage and the JSON
//     API; the external uuid is the only identifier shared with trusted
//     backend services so storage keys never leak across service boundaries.
//   - Emails are normalized (lowercased, trimmed) on every path that touches
//     credentials, and uniqueness is enforced case-insensitively.
//
// Roles:
//   - Accounts are students, teachers, or admins. Students must carry a
//     4-digit LASID; teachers and admins must not. Role checks compose via
//     UserRole.IsAtLeast for hierarchical guards.
//
// Credential verification:
//   - UserProvider.VerifyCredentials is the single place email+password
//     pairs are checked. All failure modes collapse into
//     ErrInvalidCredentials and the unknown-account path performs a dummy
//     bcrypt comparison, so callers cannot probe which accounts exist.
package accounts
