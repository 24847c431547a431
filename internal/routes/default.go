package routes

// DefaultRoute is the key shown when the URL names no known page.
const DefaultRoute = "dashboard/workplace"

// DefaultTree returns the built-in route tree. Each call returns a fresh copy.
func DefaultTree() []Node {
	return []Node{
		{Name: "menu.dashboard", Key: "dashboard", Children: []Node{
			{Name: "menu.dashboard.workplace", Key: "dashboard/workplace"},
			{Name: "menu.dashboard.monitor", Key: "dashboard/monitor"},
		}},
		{Name: "menu.visualization", Key: "visualization", Children: []Node{
			{Name: "menu.visualization.dataAnalysis", Key: "visualization/data-analysis"},
			{Name: "menu.visualization.multiDimensionDataAnalysis", Key: "visualization/multi-dimension-data-analysis"},
		}},
		{Name: "menu.list", Key: "list", Children: []Node{
			{Name: "menu.list.searchTable", Key: "list/search-table"},
			{Name: "menu.list.cardList", Key: "list/card"},
		}},
		{Name: "menu.form", Key: "form", Children: []Node{
			{Name: "menu.form.group", Key: "form/group"},
			{Name: "menu.form.step", Key: "form/step"},
		}},
		{Name: "menu.profile", Key: "profile", Children: []Node{
			{Name: "menu.profile.basic", Key: "profile/basic"},
		}},
		{Name: "menu.result", Key: "result", Children: []Node{
			{Name: "menu.result.success", Key: "result/success"},
			{Name: "menu.result.error", Key: "result/error"},
		}},
		{Name: "menu.exception", Key: "exception", Children: []Node{
			{Name: "menu.exception.403", Key: "exception/403"},
			{Name: "menu.exception.404", Key: "exception/404"},
			{Name: "menu.exception.500", Key: "exception/500"},
		}},
		{Name: "menu.user", Key: "user", Children: []Node{
			{Name: "menu.user.info", Key: "user/info"},
			{Name: "menu.user.setting", Key: "user/setting"},
		}},
	}
}
