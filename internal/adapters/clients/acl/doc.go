// Package acl is the anti-corruption layer between remote APIs and the
// domain. Remote DTOs stay unexported here and never reach the app layer.
//
// [PostsClient] reads a JSON posts resource as quotes and publishes new
// quotes back to it. [BaseAdapter], [DecodeResponse] and [TranslateSlice]
// are the shared plumbing for adapters of this kind.
//
// Failures are translated into domain errors by [MapHTTPError]:
//   - 404 -> [domain.ErrNotFound]
//   - 400 and 422 -> [domain.ErrValidation]
//   - other statuses, transport errors, an open circuit -> [domain.ErrUnavailable]
//
// [DecodeResponse] reports an undecodable success body as [domain.ErrUnavailable]
// too, wrapping the decoder error.
package acl
