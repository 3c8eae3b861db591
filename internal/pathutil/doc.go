// Package pathutil canonicalizes filesystem paths for the photo index.
//
// Every path stored in the database goes through [Normalize], and every
// cross-scan comparison goes through [Key], which case-folds on hosts whose
// filesystems compare paths case-insensitively (Windows, macOS). The stored
// form always preserves the original casing; only comparisons fold.
//
// OS calls on Windows should wrap paths with [LongPath] to survive the
// 260-character MAX_PATH limit. The escaped \\?\ form is never persisted;
// [CleanPath] strips it.
package pathutil
