// Package sitecontent models the ordered, typed content blocks that make up
// the body of a service, solution, product or blog page, and the document and
// media services behind the admin console that edits them.
//
// A page body is a List of Items. Each Item has a BlockType, an optional
// SubType and a Payload whose concrete type is fixed by the two. List methods
// never mutate their receiver, and every method that returns a list leaves
// Order equal to position. A Session wraps one list for an editing session
// and binds uploaded media to blocks by identity, so blocks can be moved or
// removed while an upload is in flight.
//
// ToWire and FromWire convert between Fields plus a List and the stored JSON
// document. The Service validates documents per collection and stores them
// through a Repository. Media goes through a BlobStore. Implementations live
// in the repo and storage subpackages.
package sitecontent
