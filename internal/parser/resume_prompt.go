package parser

import "fmt"

// defaultResumeSystemPrompt 简历抽取的系统提示词
const defaultResumeSystemPrompt = `You are an expert in CV information extraction.
You must carefully analyze the CV and extract ONLY the information that is present.
Clearly distinguish between EDUCATION (schools, universities, degrees) and PROFESSIONAL EXPERIENCES (jobs, internships).
Be precise and never mix these two categories.`

// resumeUserPromptTemplate 用户提示词模板，唯一的 %s 为简历原文
const resumeUserPromptTemplate = `Analyze this CV and extract PRECISELY the following information.
Never mix EDUCATION and PROFESSIONAL EXPERIENCES!

IMPORTANT RULES:
1. EDUCATION = schools, universities, degrees, academic programs
2. EXPERIENCES = jobs, internships, professional missions
3. SKILLS = technologies, languages, tools, personal qualities
4. If information is not present, use an empty string or empty array
5. For dates, keep the original format from the CV
6. For skills, group by logical categories

CV to analyze:
%s

Respond ONLY with this exact JSON format:
{
    "first_name": "person's first name",
    "last_name": "person's last name",
    "email": "email address",
    "phone_number": "phone number",
    "profession": "main professional title",
    "address": "complete address",
    "languages": ["language1 (level)", "language2 (level)"],
    "trainings": [{
        "school": "institution name",
        "level": "degree level (e.g.: Master, Bachelor, High School)",
        "period": "period (e.g.: 2023/2025)",
        "field": "field of study"
    }],
    "skills": [
        "Frameworks: list of frameworks",
        "Programming Languages: list of languages",
        "Databases: list of DBMS",
        "DevOps Tools: list of tools",
        "Personal Qualities: list of soft skills"
    ],
    "experiences": [{
        "title": "job position",
        "company": "company name",
        "location": "company location",
        "date": "period (original CV format)",
        "description": "detailed description of missions and responsibilities"
    }]
}

EXAMPLES of what to distinguish:
- EDUCATION: "Master in Software Engineering at Ynov Campus"
- EXPERIENCE: "Software Development Engineer at Expertime"
- SKILL: "C#, Python, Docker"
`

// buildResumeUserPrompt 将简历原文原样嵌入模板
func buildResumeUserPrompt(text string) string {
	return fmt.Sprintf(resumeUserPromptTemplate, text)
}
