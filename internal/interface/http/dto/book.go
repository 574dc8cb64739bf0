package dto

// AddBookRequest HTTP新增图书请求
// 字段规则由领域服务统一校验(一次返回全部违规项),这里只做类型绑定
type AddBookRequest struct {
	Title       string `json:"title" form:"title" example:"The Pragmatic Programmer"`
	Author      string `json:"author" form:"author" example:"David Thomas"`
	ISBN        string `json:"isbn" form:"isbn" example:"978-0-13-595705-9"`
	Category    string `json:"category" form:"category" example:"Programming"`
	PublishYear int    `json:"publishYear" form:"publishYear" example:"2019"`
	Copies      int    `json:"copies" form:"copies" example:"3"`
}

// UpdateBookRequest HTTP更新图书请求(未传的字段不修改)
// availableCopies不可直接修改,由借还流程维护
type UpdateBookRequest struct {
	Title       *string `json:"title" form:"title"`
	Author      *string `json:"author" form:"author"`
	ISBN        *string `json:"isbn" form:"isbn"`
	Category    *string `json:"category" form:"category"`
	PublishYear *int    `json:"publishYear" form:"publishYear"`
	Copies      *int    `json:"copies" form:"copies"`
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	Keyword  string `form:"keyword"`
	Category string `form:"category"`
}
