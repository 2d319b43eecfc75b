// Package userdata persists host user profiles in a remote REST document
// collection. The HTTP surface follows restdb.io-style collections:
//
//	GET    {base}{collection}?apikey=..&q={"<userIdField>":"<hostUserId>"}
//	POST   {base}{collection}?apikey=..
//	PUT    {base}{collection}/{id}?apikey=..
//	DELETE {base}{collection}/{id}?apikey=..
//
// A Store exposes Fetch, Save and Delete. Each call resolves its settings from
// an injected properties.Provider and issues exactly one request. Transport
// and remote failures are logged and reported as an absent result rather than
// an error; the caller cannot tell "not found" from "unreachable".
package userdata
