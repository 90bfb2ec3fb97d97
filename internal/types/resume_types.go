package types

import (
	"strings"

	"github.com/google/uuid"
)

// Experience 工作/实习经历条目
type Experience struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        *string `json:"date"` // 保留简历原始格式，不做日期解析
	Company     *string `json:"company"`
	Location    *string `json:"location"`
}

// NewExperience 构造经历条目，title/description 去除首尾空白
func NewExperience(title, description string, date, company, location *string) Experience {
	return Experience{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Date:        date,
		Company:     company,
		Location:    location,
	}
}

// Training 教育经历条目（学校、学历、时间段、专业）
type Training struct {
	School string  `json:"school"`
	Level  string  `json:"level"` // 例如 Master, Bachelor
	Period *string `json:"period"`
	Field  *string `json:"field"`
}

// NewTraining 构造教育条目，school/level 去除首尾空白
func NewTraining(school, level string, period, field *string) Training {
	return Training{
		School: strings.TrimSpace(school),
		Level:  strings.TrimSpace(level),
		Period: period,
		Field:  field,
	}
}

// ResumeFields 构造 Resume 所需的原始字段
type ResumeFields struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Profession  string
	Address     string
	Languages   []string
	Trainings   []Training
	Skills      []string
	Experiences []Experience
}

// Resume 简历结构化结果。
// 字段缺失时使用空字符串或空数组表示，序列化时不会省略任何字段。
type Resume struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Email       string       `json:"email"`
	PhoneNumber string       `json:"phone_number"`
	Profession  string       `json:"profession"`
	Address     string       `json:"address"`
	Languages   []string     `json:"languages"`
	Trainings   []Training   `json:"trainings"`
	Skills      []string     `json:"skills"`
	Experiences []Experience `json:"experiences"`
}

// NewResume 根据字段构造简历记录，并分配一个新的ID。
// 姓名去除首尾空白，邮箱去除空白并转为小写，nil 切片统一转为空切片。
func NewResume(f ResumeFields) *Resume {
	return &Resume{
		ID:          uuid.NewString(),
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.ToLower(strings.TrimSpace(f.Email)),
		PhoneNumber: f.PhoneNumber,
		Profession:  f.Profession,
		Address:     f.Address,
		Languages:   nonNil(f.Languages),
		Trainings:   nonNil(f.Trainings),
		Skills:      nonNil(f.Skills),
		Experiences: nonNil(f.Experiences),
	}
}

// FullName 返回 "名 姓"，任一为空时不会出现多余空格
func (r *Resume) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
