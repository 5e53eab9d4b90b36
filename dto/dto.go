// Package dto holds the response shapes. Each view is a pure function from
// a model (plus a media URL resolver) to its JSON form.
package dto

// URLFunc turns a stored media key into a public URL.
type URLFunc func(key string) string

const dateLayout = "2006-01-02"

func mediaURL(url URLFunc, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	u := url(*key)
	return &u
}
