// Package query compiles wikilog listing filters into query descriptors.
//
// Two builders cover the two entity kinds:
//
//   - ItemQuery filters wikilog articles by wikilog, namespace, publication
//     status, category, author, tag and publication date.
//   - CommentQuery filters comments by moderation status, item, wikilog,
//     namespace, thread, author and date.
//
// Both compile to a *queryir.Descriptor through Compile and to ordered
// request parameters through DefaultQuery. ParseItemQuery and
// ParseCommentQuery apply such parameters back onto a fresh builder.
//
// Builders never perform I/O. The only collaborator they call is the
// wiki.Lookup in Env, and only from SetFrom and the parsers, to turn titles
// into page ids.
package query
