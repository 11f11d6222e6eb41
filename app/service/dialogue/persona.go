package dialogue

import (
	"strings"
	"time"

	"recipechat/app/model"

	_ "embed"

	"github.com/elliotchance/pie/v2"
)

//go:embed persona_prompt.txt
var personaPromptTemplate string

const (
	emptyListValue = "لا يوجد"
	listSeparator  = "، "
)

const textModeRules = `المحادثة نصية:
- الردود واضحة ومباشرة ويمكن أن تكون مفصلة عند الحاجة.`

const voiceModeRules = `المحادثة صوتية:
- يجب أن تكون جميع الردود موجزة وواضحة ومباشرة، ولا تطرح أكثر من سؤال في نفس الرسالة.
- اكتب باللهجة المصرية بالعربية مع التشكيل الكامل في كل الكلمات لتسهيل النطق عبر تحويل النص إلى كلام.
- تجنب القوائم والخطوات الكثيرة والتفاصيل الطويلة.
مثال: "إزَّاي أَقدَر أَساعِدَك؟" أو "طَب خُد الوَصفَة دي!"`

const (
	textRecipeRule  = "اعرضها فورًا كاملة كما هي بالتشكيل دون تعديل أو تلخيص."
	voiceRecipeRule = "لا تعرضها كاملة، بل قدم ملخصًا بسيطًا جدًا في سطر أو سطرين يوضح اسم الأكلة وطريقة التحضير العامة."
)

// BuildPersona renders the system instruction for the reply model. It
// depends only on its arguments.
func BuildPersona(profile model.UserProfile, mode model.Mode, now time.Time) string {
	modeRules := textModeRules
	recipeRule := textRecipeRule
	if mode == model.ModeVoice {
		modeRules = voiceModeRules
		recipeRule = voiceRecipeRule
	}

	favoriteTitles := pie.Map(profile.Favorites, func(r model.Recipe) string {
		return r.Title
	})

	values := []string{
		"{title}", honorific(profile),
		"{name}", profile.Name,
		"{gender}", genderLabel(profile.Gender),
		"{likes}", joinList(profile.Likes),
		"{dislikes}", joinList(profile.Dislikes),
		"{allergies}", joinList(profile.Allergies),
		"{favorites}", joinList(favoriteTitles),
		"{mode}", string(mode),
		"{mode_rules}", modeRules,
		"{recipe_rule}", recipeRule,
		"{time}", now.Format("15:04"),
		"{date}", now.Format("2006-01-02"),
	}

	return strings.TrimSpace(strings.NewReplacer(values...).Replace(personaPromptTemplate))
}

func honorific(profile model.UserProfile) string {
	female := profile.Gender == model.GenderFemale
	profession := strings.ToLower(strings.TrimSpace(profile.Profession))

	switch {
	case profession == "":
		if female {
			return "أستاذة"
		}
		return "أستاذ"
	case strings.Contains(profession, "مهندس"), strings.Contains(profession, "engineer"):
		if female {
			return "بشمهندسه"
		}
		return "بشمهندس"
	case strings.Contains(profession, "دكتور"), strings.Contains(profession, "doctor"):
		if female {
			return "دكتوره"
		}
		return "دكتور"
	default:
		return strings.TrimSpace(profile.Profession)
	}
}

func genderLabel(g model.Gender) string {
	if g == model.GenderFemale {
		return "أنثى"
	}

	return "ذكر"
}

func joinList(items []string) string {
	items = pie.Filter(items, func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
	if len(items) == 0 {
		return emptyListValue
	}

	return strings.Join(items, listSeparator)
}
