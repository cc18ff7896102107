package service

import "sort"

// Rank 表示一个等级档位：达到 Threshold 签到积分即获得 Title。
// Description 为 markdown 文本，仅用于等级页展示。
type Rank struct {
	Threshold   int
	Title       string
	Description string
}

// RankTable 是按 Threshold 降序排列的等级表，末位必须是 0 档兜底项。
type RankTable []Rank

// DefaultRankTable 返回默认的九级等级表。
func DefaultRankTable() RankTable {
	return normalizeRankTable(RankTable{
		{16500, "Code Wizard 🧙", "The ultimate level of mastery. You command technology with ease, tackling impossible challenges and innovating across entire systems."},
		{14000, "Software Master 🏆", "A top-tier expert. You lead complex projects, define architectural standards, and your expertise is sought after across the organization."},
		{12000, "System Architect 🏗️", "You design and build the structural framework of large-scale systems, ensuring reliability, scalability, and maintainability."},
		{10000, "Senior Specialist 🌟", "An expert capable of deep dives into specialized domains. You solve the toughest problems and mentor others on best practices."},
		{7500, "Refactor Engineer 🛠️", "Focused on code health and efficiency. You take ownership of legacy codebases, transforming them into clean, high-performance systems."},
		{5000, "Domain Specialist 🖥️", "Highly autonomous and proficient. You manage features end-to-end, deliver high-quality work, and require minimal supervision."},
		{2500, "Junior Developer 🛠️", "Capable of independent feature development. You're learning rapidly and gaining initial experience in project cycles."},
		{500, "Newbie Coder 🌱", "The initial stage of learning. You are focused on mastering basic syntax, fundamental concepts, and contributing to small tasks."},
		{0, "Aspiring 🚀", "The starting point. You're eager, motivated, and just beginning your journey into the world of software development."},
	})
}

// Of 返回第一个 Threshold <= points 的档位标题。
// 表中含 0 档兜底，因此对任意非负积分总有结果。
func (t RankTable) Of(points int) string {
	for _, r := range t {
		if points >= r.Threshold {
			return r.Title
		}
	}
	// 兜底档在构造时保证存在，这里只防御空表
	return ""
}

// normalizeRankTable 保证降序排列并存在 0 档兜底项。
func normalizeRankTable(table RankTable) RankTable {
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Threshold > table[j].Threshold
	})
	if len(table) == 0 || table[len(table)-1].Threshold != 0 {
		table = append(table, Rank{Threshold: 0, Title: "Aspiring 🚀"})
	}
	return table
}
