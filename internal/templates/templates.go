// Package templates holds the starter code handed out with generated
// questions.
package templates

import "strings"

// QuestionType is the broad data-structure category of a question.
type QuestionType string

const (
	Array  QuestionType = "array"
	String QuestionType = "string"
	Tree   QuestionType = "tree"
)

// For returns the starter code for language and question type. An unknown
// type falls back to the array template; an unknown language yields "".
func For(language string, qt QuestionType) string {
	byType, ok := starters[normalizeLanguage(language)]
	if !ok {
		return ""
	}
	if code, ok := byType[qt]; ok {
		return code
	}
	return byType[Array]
}

// Languages lists the languages that have starter code, in display order.
func Languages() []string {
	return []string{"cpp", "c", "java", "go", "python"}
}

func normalizeLanguage(language string) string {
	l := strings.ToLower(strings.TrimSpace(language))
	switch l {
	case "c++", "cplusplus", "cxx":
		return "cpp"
	case "golang":
		return "go"
	case "py", "python3":
		return "python"
	}
	return l
}

var starters = map[string]map[QuestionType]string{
	"cpp": {
		Array: `#include <vector>
#include <iostream>

using namespace std;

vector<int> solve(vector<int>& nums) {
    // Write your code here
    return {};
}`,
		String: `#include <string>
#include <iostream>

using namespace std;

string solve(string s) {
    // Write your code here
    return "";
}`,
		Tree: `#include <iostream>

// Definition for a binary tree node
struct TreeNode {
    int val;
    TreeNode *left;
    TreeNode *right;
    TreeNode() : val(0), left(nullptr), right(nullptr) {}
    TreeNode(int x) : val(x), left(nullptr), right(nullptr) {}
    TreeNode(int x, TreeNode *left, TreeNode *right) : val(x), left(left), right(right) {}
};

int solve(TreeNode* root) {
    // Write your code here
    return 0;
}`,
	},
	"c": {
		Array: `#include <stdio.h>
#include <stdlib.h>

int* solve(int* nums, int numsSize, int* returnSize) {
    // Write your code here
    *returnSize = 0;
    return NULL;
}`,
		String: `#include <stdio.h>
#include <string.h>
#include <stdlib.h>

char* solve(const char* s) {
    // Write your code here
    return NULL;
}`,
		Tree: `#include <stdio.h>
#include <stdlib.h>

// Definition for a binary tree node
struct TreeNode {
    int val;
    struct TreeNode *left;
    struct TreeNode *right;
};

int solve(struct TreeNode* root) {
    // Write your code here
    return 0;
}`,
	},
	"java": {
		Array: `import java.util.*;

public class Solution {
    public int[] solve(int[] nums) {
        // Write your code here
        return new int[0];
    }
}`,
		String: `public class Solution {
    public String solve(String s) {
        // Write your code here
        return "";
    }
}`,
		Tree: `// Definition for a binary tree node
class TreeNode {
    int val;
    TreeNode left;
    TreeNode right;
    TreeNode() {}
    TreeNode(int val) { this.val = val; }
    TreeNode(int val, TreeNode left, TreeNode right) {
        this.val = val;
        this.left = left;
        this.right = right;
    }
}

public class Solution {
    public int solve(TreeNode root) {
        // Write your code here
        return 0;
    }
}`,
	},
	"go": {
		Array: `package main

func solve(nums []int) []int {
	// Write your code here
	return nil
}`,
		String: `package main

func solve(s string) string {
	// Write your code here
	return ""
}`,
		Tree: `package main

// TreeNode is a binary tree node.
type TreeNode struct {
	Val   int
	Left  *TreeNode
	Right *TreeNode
}

func solve(root *TreeNode) int {
	// Write your code here
	return 0
}`,
	},
	"python": {
		Array: `from typing import List


def solve(nums: List[int]) -> List[int]:
    # Write your code here
    return []`,
		String: `def solve(s: str) -> str:
    # Write your code here
    return ""`,
		Tree: `from typing import Optional


class TreeNode:
    def __init__(self, val=0, left=None, right=None):
        self.val = val
        self.left = left
        self.right = right


def solve(root: Optional[TreeNode]) -> int:
    # Write your code here
    return 0`,
	},
}
