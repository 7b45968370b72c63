package models

// Student is a read-only roster entry owned by the external person
// directory. Only the fields needed to render a class roster are mapped.
type Student struct {
	ID          string `db:"id" json:"id"`
	TenantID    string `db:"tenant_id" json:"tenant_id"`
	StudentCode string `db:"student_code" json:"student_code"`
	FullName    string `db:"full_name" json:"full_name"`
	Grade       int    `db:"grade" json:"grade"`
	Section     string `db:"section" json:"section"`
}
