package directory

import "github.com/mohdshetty/grap/core"

type Faculty struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	IsDeleted bool   `json:"is_deleted" yaml:"isDeleted"`
}

// Department belongs to one faculty for its whole lifetime.
type Department struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	FacultyID int    `json:"faculty_id" yaml:"facultyId"`
	IsDeleted bool   `json:"is_deleted" yaml:"isDeleted"`
}

type NewFaculty struct {
	Name string `json:"name"`
}

func (nf *NewFaculty) clean() {
	nf.Name = core.CleanString(nf.Name)
}

type NewDepartment struct {
	Name      string `json:"name"`
	FacultyID int    `json:"faculty_id"`
}

func (nd *NewDepartment) clean() {
	nd.Name = core.CleanString(nd.Name)
}

type QueryFilter struct {
	FacultyID      int  `query:"faculty_id"`
	IncludeDeleted bool `query:"include_deleted"`
}
